package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgpai22/subtext/internal/logging"
	"github.com/mgpai22/subtext/internal/subtitle"
)

const (
	DefaultExtension = ".md"
	srtDirName       = "srt"
	mdDirName        = "md"
)

// holds conversion options
type Options struct {
	Render    subtitle.RenderOptions
	Extension string
}

// DefaultOptions renders Markdown with start-time labels.
func DefaultOptions() Options {
	render := subtitle.DefaultRenderOptions()
	render.IncludeTimestamps = true
	render.StripMarkup = true
	render.Markdown = true
	return Options{Render: render, Extension: DefaultExtension}
}

func (o Options) extension() string {
	if o.Extension == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(o.Extension, ".") {
		return "." + o.Extension
	}
	return o.Extension
}

// FileResult describes one converted file.
type FileResult struct {
	Source  string
	Output  string
	Format  subtitle.Format
	Records int
	Skipped int
	Content string
}

// DirResult summarizes a batch conversion.
type DirResult struct {
	Files     []*FileResult
	Converted int
	Failed    int
}

func (r *DirResult) merge(other *DirResult) {
	r.Files = append(r.Files, other.Files...)
	r.Converted += other.Converted
	r.Failed += other.Failed
}

// OutputName maps "Title [id].en.srt" to "Title [id].en.md".
func OutputName(src string, opts Options) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + opts.extension()
}

// Render opens a captions file and renders it without writing anything.
func Render(src string, opts Options) (*FileResult, error) {
	parsed, err := subtitle.Open(src)
	if err != nil {
		return nil, err
	}

	content := subtitle.Render(parsed.Records, opts.Render)
	if content != "" {
		content += "\n"
	}

	return &FileResult{
		Source:  src,
		Format:  parsed.Format,
		Records: len(parsed.Records),
		Skipped: parsed.Skipped,
		Content: content,
	}, nil
}

// File converts src and writes the document to dst, creating parent
// directories as needed.
func File(src, dst string, opts Options) (*FileResult, error) {
	result, err := Render(src, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dst, []byte(result.Content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	result.Output = dst
	return result, nil
}

// Dir converts every captions file in srcDir into dstDir. When both a .srt
// and another format share a name, the .srt wins. Per-file failures are
// logged and counted.
func Dir(
	srcDir, dstDir string,
	opts Options,
	logger *logging.Logger,
) (*DirResult, error) {
	logger = logging.OrNop(logger)

	files, err := subtitle.ListFiles(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("subtitle directory not found: %s", srcDir)
		}
		return nil, fmt.Errorf("failed to list %s: %w", srcDir, err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return preferSRT(files[i]) && !preferSRT(files[j])
	})

	result := &DirResult{}
	seen := make(map[string]bool, len(files))
	for _, src := range files {
		name := OutputName(src, opts)
		if seen[name] {
			logger.Debugw("Skipping duplicate captions", "file", src)
			continue
		}
		seen[name] = true

		fr, err := File(src, filepath.Join(dstDir, name), opts)
		if err != nil {
			result.Failed++
			logger.Warnw("Conversion failed", "file", filepath.Base(src), "error", err)
			continue
		}
		if fr.Skipped > 0 {
			logger.Warnw("Skipped malformed caption blocks",
				"file", filepath.Base(src),
				"skipped", fr.Skipped,
			)
		}
		logger.Infow("Converted", "file", filepath.Base(src), "output", name)
		result.Files = append(result.Files, fr)
		result.Converted++
	}

	return result, nil
}

func preferSRT(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".srt")
}

// ChannelDirs returns the srt and md directories of a channel under base.
func ChannelDirs(baseDir, channel string) (string, string) {
	return filepath.Join(baseDir, channel, srtDirName),
		filepath.Join(baseDir, channel, mdDirName)
}

// Channels converts <base>/<channel>/srt into <base>/<channel>/md for every
// channel directory that has captions.
func Channels(
	baseDir string,
	opts Options,
	logger *logging.Logger,
) (*DirResult, error) {
	logger = logging.OrNop(logger)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory %s: %w", baseDir, err)
	}

	total := &DirResult{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		srtDir, mdDir := ChannelDirs(baseDir, entry.Name())
		if info, err := os.Stat(srtDir); err != nil || !info.IsDir() {
			continue
		}

		logger.Infow("Processing channel", "channel", entry.Name())
		res, err := Dir(srtDir, mdDir, opts, logger)
		if err != nil {
			logger.Warnw("Channel conversion failed", "channel", entry.Name(), "error", err)
			continue
		}
		total.merge(res)
	}

	return total, nil
}
