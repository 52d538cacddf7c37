package subtitle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asticode/go-astisub"
)

// Open reads a captions file from disk. SubRip goes through Parse so that
// broken blocks are skipped instead of failing the whole file; the other
// formats are decoded with astisub.
func Open(path string) (*ParseResult, error) {
	format, err := FormatFromExtension(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if format == FormatSRT {
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("error reading SRT file: %w", err)
		}
		return Parse(string(data)), nil
	}

	var subs *astisub.Subtitles
	switch format {
	case FormatVTT:
		subs, err = astisub.ReadFromWebVTT(file)
	case FormatASS:
		subs, err = astisub.ReadFromSSA(file)
	case FormatTTML:
		subs, err = astisub.ReadFromTTML(file)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", strings.ToUpper(string(format)), err)
	}

	return fromAstisub(subs, format), nil
}

func fromAstisub(subs *astisub.Subtitles, format Format) *ParseResult {
	result := &ParseResult{
		Records: make([]Record, 0, len(subs.Items)),
		Format:  format,
	}
	for i, item := range subs.Items {
		if item.EndAt < item.StartAt {
			result.skip(&FormatError{
				Block:  i + 1,
				Line:   item.String(),
				Reason: "end precedes start",
			})
			continue
		}
		record := Record{
			Index:     i + 1,
			StartTime: item.StartAt,
			EndTime:   item.EndAt,
			Lines:     make([]string, 0, len(item.Lines)),
		}
		for _, line := range item.Lines {
			var parts []string
			for _, li := range line.Items {
				if text := strings.TrimSpace(li.Text); text != "" {
					parts = append(parts, text)
				}
			}
			record.Lines = append(record.Lines, strings.Join(parts, " "))
		}
		result.Records = append(result.Records, record)
	}
	return result
}

// subtitle format based on file extension
func FormatFromExtension(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT, nil
	case ".vtt":
		return FormatVTT, nil
	case ".ass", ".ssa":
		return FormatASS, nil
	case ".ttml", ".dfxp":
		return FormatTTML, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}

// checks if the file is a captions file based on extension
func IsSubtitleFile(path string) bool {
	_, err := FormatFromExtension(path)
	return err == nil
}

// ListFiles returns the captions files directly inside dir, sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSubtitleFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
