package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxKeyPoints  = 8
	maxKeywords   = 15
	briefPoints   = 3
	detailPoints  = 6
	shownKeywords = 10
)

var (
	headingPrefix = regexp.MustCompile(`^[#*]+\s*`)
	punctuation   = regexp.MustCompile(`[,.!?:;()"'\[\]]`)
	stopWords     = map[string]bool{
		"this": true, "that": true, "about": true,
		"they": true, "would": true, "could": true,
	}
)

// summarizes offline from the document text alone
type Heuristic struct {
	options Options
}

func NewHeuristic(opts Options) *Heuristic {
	return &Heuristic{options: opts}
}

func (h *Heuristic) Summarize(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", fmt.Errorf("document is empty")
	}
	return renderHeuristic(doc, h.options.Brief), nil
}

// KeyPoints returns up to max distinct lines of 20..300 characters with
// timestamp labels and heading markers removed, in document order.
func KeyPoints(content string, max int) []string {
	var points []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		clean := strings.TrimSpace(labelPattern.ReplaceAllString(strings.TrimSpace(line), ""))
		clean = strings.TrimSpace(headingPrefix.ReplaceAllString(clean, ""))

		n := utf8.RuneCountInString(clean)
		if n <= 20 || n >= 300 || seen[clean] {
			continue
		}
		seen[clean] = true
		points = append(points, clean)
		if len(points) >= max {
			break
		}
	}
	return points
}

// Keywords returns up to max distinct candidate terms in first-seen order:
// words longer than five characters that contain an upper-case letter or a
// digit, or are longer than eight characters.
func Keywords(content string, max int) []string {
	text := labelPattern.ReplaceAllString(content, "")
	text = punctuation.ReplaceAllString(text, " ")

	var keywords []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		if n <= 5 || strings.HasPrefix(word, "http") || stopWords[strings.ToLower(word)] {
			continue
		}
		if !hasUpperOrDigit(word) && n <= 8 {
			continue
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) >= max {
			break
		}
	}
	return keywords
}

func hasUpperOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func renderHeuristic(doc Document, brief bool) string {
	points := KeyPoints(doc.Content, maxKeyPoints)
	words := len(strings.Fields(doc.Content))

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n## Summary\n\n", doc.Title)

	if brief {
		sb.WriteString("### Overview\n")
		fmt.Fprintf(&sb, "A %d-word transcript.\n\n", words)
		if len(points) > 0 {
			sb.WriteString("### Key points\n")
			for i, p := range points[:min(len(points), briefPoints)] {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, truncateRunes(p, 100))
			}
		}
	} else {
		meaningful := 0
		for _, line := range strings.Split(doc.Content, "\n") {
			if utf8.RuneCountInString(strings.TrimSpace(line)) > 10 {
				meaningful++
			}
		}

		sb.WriteString("### Stats\n")
		fmt.Fprintf(&sb, "- **Words**: %d\n", words)
		fmt.Fprintf(&sb, "- **Segments**: %d\n\n", meaningful)

		if keywords := Keywords(doc.Content, maxKeywords); len(keywords) > 0 {
			sb.WriteString("### Keywords\n")
			sb.WriteString(strings.Join(keywords[:min(len(keywords), shownKeywords)], ", "))
			sb.WriteString("\n\n")
		}

		sb.WriteString("### Key points\n")
		for i, p := range points[:min(len(points), detailPoints)] {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, truncateRunes(p, 150))
		}
		if len(points) > detailPoints {
			fmt.Fprintf(&sb, "\n*...and %d more*\n", len(points)-detailPoints)
		}
	}

	sb.WriteString("\n---\n\n*Generated automatically*\n")
	return sb.String()
}
