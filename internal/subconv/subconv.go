package subconv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subtext/internal/logging"
)

// Converter turns one captions file into SubRip.
type Converter interface {
	ToSRT(ctx context.Context, inputPath, outputPath string) error
}

// converts with an ffmpeg binary
type FFmpegConverter struct {
	ffmpegPath string
}

func NewFFmpegConverter(ffmpegPath string) *FFmpegConverter {
	return &FFmpegConverter{ffmpegPath: ffmpegPath}
}

func (c *FFmpegConverter) ToSRT(
	ctx context.Context,
	inputPath, outputPath string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"f": "srt",
		"y": "",
	}

	stream := ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
	if c.ffmpegPath != "" {
		stream = stream.SetFfmpegPath(c.ffmpegPath)
	}

	if err := stream.Run(); err != nil {
		return fmt.Errorf("ffmpeg subtitle conversion failed: %w", err)
	}
	return nil
}

// SRTPath maps "Title [id].en.vtt" to "Title [id].en.srt".
func SRTPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".srt"
}

// NormalizeDir converts every WebVTT file in dir that has no SubRip sibling.
// Individual failures are logged and skipped; the count of converted files
// is returned.
func NormalizeDir(
	ctx context.Context,
	conv Converter,
	dir string,
	logger *logging.Logger,
) (int, error) {
	logger = logging.OrNop(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	converted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".vtt") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return converted, err
		}

		input := filepath.Join(dir, entry.Name())
		output := SRTPath(input)
		if _, err := os.Stat(output); err == nil {
			continue
		}

		if err := conv.ToSRT(ctx, input, output); err != nil {
			logger.Warnw("Subtitle conversion failed",
				"input", input,
				"error", err,
			)
			continue
		}
		logger.Debugw("Converted subtitle", "input", input, "output", output)
		converted++
	}

	return converted, nil
}
