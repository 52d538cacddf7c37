package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subtext/internal/tracker"
)

// column order of a channel listing
var Header = []string{"title", "duration", "upload_date", "view_count", "webpage_url"}

const urlColumn = 4

// represents one video in a channel listing
type Row struct {
	Title      string
	Duration   string
	UploadDate string
	ViewCount  string
	WebpageURL string
}

func (r Row) record() []string {
	return []string{r.Title, r.Duration, r.UploadDate, r.ViewCount, r.WebpageURL}
}

func readAll(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Header[0])
}

// LoadURLs returns the webpage_url of every row already in a listing. A
// missing file yields an empty set.
func LoadURLs(path string) (tracker.Set, error) {
	records, err := readAll(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tracker.NewSet(), nil
		}
		return nil, err
	}

	urls := tracker.NewSet()
	for _, rec := range records {
		if len(rec) <= urlColumn || (isHeader(rec) && len(rec) >= len(Header)) {
			continue
		}
		if u := strings.TrimSpace(rec[urlColumn]); u != "" {
			urls.Add(u)
		}
	}
	return urls, nil
}

// ReadURLs returns listing URLs in file order. Files with a webpage_url
// header column use that column; anything else is read as a plain list with
// the URL in the first column. Blank and "#" entries are skipped.
func ReadURLs(path string) ([]string, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []string{}, nil
	}

	col := 0
	body := records
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "webpage_url") {
			col = i
			body = records[1:]
			break
		}
	}

	urls := make([]string, 0, len(body))
	for _, rec := range body {
		if len(rec) <= col {
			continue
		}
		u := strings.TrimSpace(rec[col])
		if u == "" || strings.HasPrefix(u, "#") {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// Write stores rows at path, appending when appendMode is set. The header
// is written for new or empty files and whenever the file is overwritten.
func Write(path string, rows []Row, appendMode bool) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	needHeader := true
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			needHeader = false
		}
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer := csv.NewWriter(file)
	if needHeader {
		if err := writer.Write(Header); err != nil {
			return 0, fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	written := 0
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return written, fmt.Errorf("failed to write CSV row: %w", err)
		}
		written++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return written, fmt.Errorf("failed to flush CSV %s: %w", path, err)
	}
	return written, nil
}

// FormatDuration renders seconds the way listings have always shown them:
// "<hours> 时 <minutes> 分".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(seconds)
	return fmt.Sprintf("%d 时 %d 分", total/3600, (total%3600)/60)
}

// YYYYMMDD -> YYYY-MM-DD, "" for anything else
func FormatUploadDate(s string) string {
	if len(s) != 8 {
		return ""
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}
