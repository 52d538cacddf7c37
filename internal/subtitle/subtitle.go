package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// represents single caption block
type Record struct {
	Index     int // 0 when the block had no index line
	StartTime time.Duration
	EndTime   time.Duration
	Lines     []string
}

// caption lines joined with newlines
func (r Record) Text() string {
	return strings.Join(r.Lines, "\n")
}

// represents supported caption formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatTTML Format = "ttml"
)

// FormatError describes a caption block or timestamp that could not be parsed.
type FormatError struct {
	Block  int // 1-based block number, 0 when not tied to a block
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Block > 0 {
		return fmt.Sprintf("block %d: %s (%q)", e.Block, e.Reason, e.Line)
	}
	return fmt.Sprintf("%s (%q)", e.Reason, e.Line)
}

// ParseResult holds the records of a captions file plus the blocks that were
// skipped along the way.
type ParseResult struct {
	Records []Record
	Skipped int
	Errors  []*FormatError
	Format  Format
}

func (r *ParseResult) skip(err *FormatError) {
	r.Skipped++
	r.Errors = append(r.Errors, err)
}
