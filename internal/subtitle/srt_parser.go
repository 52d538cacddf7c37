package subtitle

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const timestampArrow = "-->"

// Parse splits SubRip text into caption records. Blocks without a usable
// timestamp line are skipped and reported in the result, never fatal.
func Parse(raw string) *ParseResult {
	result := &ParseResult{
		Records: []Record{},
		Format:  FormatSRT,
	}

	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	blockNum := 0
	var block []string

	flush := func() {
		if len(block) == 0 {
			return
		}
		blockNum++
		record, err := parseBlock(block)
		if err != nil {
			err.Block = blockNum
			result.skip(err)
		} else {
			result.Records = append(result.Records, record)
		}
		block = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return result
}

func parseBlock(lines []string) (Record, *FormatError) {
	tsLine := -1
	for i, line := range lines {
		if strings.Contains(line, timestampArrow) {
			tsLine = i
			break
		}
	}
	if tsLine < 0 {
		return Record{}, &FormatError{
			Line:   lines[0],
			Reason: "no timestamp line",
		}
	}

	start, end, err := ParseTimestampLine(lines[tsLine])
	if err != nil {
		fe := asFormatError(err, lines[tsLine])
		return Record{}, fe
	}

	record := Record{
		StartTime: start,
		EndTime:   end,
		Lines:     []string{},
	}

	head := lines[:tsLine]
	if len(head) == 1 {
		if index, err := strconv.Atoi(strings.TrimSpace(head[0])); err == nil && index >= 0 {
			record.Index = index
			head = nil
		}
	}
	// stray lines before the timestamp are kept as text
	for _, line := range head {
		record.Lines = append(record.Lines, strings.TrimSpace(line))
	}
	for _, line := range lines[tsLine+1:] {
		record.Lines = append(record.Lines, strings.TrimRight(line, " \t"))
	}

	return record, nil
}

// ParseTimestampLine parses "start --> end". Trailing SubRip position hints
// after the end timestamp are ignored.
func ParseTimestampLine(line string) (time.Duration, time.Duration, error) {
	left, right, ok := strings.Cut(line, timestampArrow)
	if !ok {
		return 0, 0, &FormatError{Line: line, Reason: "missing " + timestampArrow}
	}

	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, &FormatError{Line: line, Reason: "missing end timestamp"}
	}

	start, err := ParseTimestamp(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, &FormatError{Line: line, Reason: "end precedes start"}
	}

	return start, end, nil
}

// hour values at or above this overflow time.Duration
const maxHours = math.MaxInt64 / int64(time.Hour)

// ParseTimestamp converts HH:MM:SS,mmm into a duration.
func ParseTimestamp(s string) (time.Duration, error) {
	clock, millis, ok := strings.Cut(s, ",")
	if !ok {
		return 0, &FormatError{Line: s, Reason: "missing millisecond separator"}
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, &FormatError{Line: s, Reason: "expected HH:MM:SS"}
	}

	h, err := parseDigits(parts[0], 0)
	if err != nil || int64(h) >= maxHours {
		return 0, &FormatError{Line: s, Reason: "invalid hours"}
	}
	m, err := parseDigits(parts[1], 2)
	if err != nil || m >= 60 {
		return 0, &FormatError{Line: s, Reason: "invalid minutes"}
	}
	sec, err := parseDigits(parts[2], 2)
	if err != nil || sec >= 60 {
		return 0, &FormatError{Line: s, Reason: "invalid seconds"}
	}
	ms, err := parseDigits(millis, 3)
	if err != nil {
		return 0, &FormatError{Line: s, Reason: "invalid milliseconds"}
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// parses an unsigned decimal field; width 0 means any non-zero width
func parseDigits(s string, width int) (int, error) {
	if s == "" || (width > 0 && len(s) != width) {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func asFormatError(err error, line string) *FormatError {
	if fe, ok := err.(*FormatError); ok {
		return &FormatError{Line: line, Reason: fe.Reason}
	}
	return &FormatError{Line: line, Reason: err.Error()}
}
