package subtitle

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// holds options for turning caption records into a readable document
type RenderOptions struct {
	IncludeTimestamps bool // prefix each segment with its start time
	IncludeEndTime    bool // label becomes "start --> end"
	DedupeConsecutive bool // drop a segment identical to the one before it
	StripMarkup       bool // remove tags, {overrides} and [annotations]
	Markdown          bool // bold labels, MM:SS when under an hour
}

// dedupe only; caption text is rendered as written
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{DedupeConsecutive: true}
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	overridePattern   = regexp.MustCompile(`\{[^}]+\}`)
	annotationPattern = regexp.MustCompile(`\[[^\]]+\]`)
)

// Render joins caption records into a document, one segment per record,
// separated by blank lines.
func Render(records []Record, opts RenderOptions) string {
	segments := make([]string, 0, len(records))
	prev := ""
	emitted := false

	for _, record := range records {
		unit := textUnit(record, opts.StripMarkup)
		if opts.StripMarkup && unit == "" {
			continue
		}
		if opts.DedupeConsecutive && emitted && unit == prev {
			continue
		}
		prev = unit
		emitted = true

		if !opts.IncludeTimestamps {
			segments = append(segments, unit)
			continue
		}

		label := FormatLabel(record.StartTime, opts.Markdown)
		if opts.IncludeEndTime {
			label += " --> " + FormatLabel(record.EndTime, opts.Markdown)
		}
		if opts.Markdown {
			label = "**[" + label + "]**"
		} else {
			label = "[" + label + "]"
		}
		if unit == "" {
			segments = append(segments, label)
		} else {
			segments = append(segments, label+" "+unit)
		}
	}

	return strings.Join(segments, "\n\n")
}

func textUnit(record Record, strip bool) string {
	if !strip {
		return record.Text()
	}
	lines := make([]string, 0, len(record.Lines))
	for _, line := range record.Lines {
		if clean := CleanText(line); clean != "" {
			lines = append(lines, clean)
		}
	}
	return strings.Join(lines, "\n")
}

// CleanText removes inline markup left in auto-generated captions.
func CleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = overridePattern.ReplaceAllString(s, "")
	s = annotationPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// FormatLabel formats a caption time, dropping the sub-second part. In
// compact form the hour is omitted while it is zero.
func FormatLabel(d time.Duration, compact bool) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if compact && hours == 0 {
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
