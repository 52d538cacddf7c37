package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/ffmpeg"
	"github.com/mgpai22/subtext/internal/subconv"
	"github.com/mgpai22/subtext/internal/ytdlp"
)

// context cancelled on Ctrl+C
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newYtDlpClient() (*ytdlp.Client, error) {
	path, err := ytdlp.Locate(cfg.YtDlp.Path)
	if err != nil {
		return nil, err
	}
	logger.Debugw("Using yt-dlp", "path", path, "proxy", cfg.Proxy)
	return ytdlp.NewClient(path, cfg.Proxy, logger), nil
}

// returns a VTT -> SRT pass over a directory, or nil when ffmpeg is missing
func newNormalizer() func(ctx context.Context, dir string) (int, error) {
	path, err := ffmpeg.Locate(cfg.FFmpeg.Path)
	if err != nil {
		logger.Debugw("ffmpeg not available, WebVTT captions stay as downloaded", "error", err)
		return nil
	}
	conv := subconv.NewFFmpegConverter(path)
	return func(ctx context.Context, dir string) (int, error) {
		return subconv.NormalizeDir(ctx, conv, dir, logger)
	}
}

// flag value when set on the command line, otherwise fallback
func stringOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func intOr(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}

func subLangs(cmd *cobra.Command) []string {
	if !cmd.Flags().Changed("sub-langs") {
		return cfg.SubLangs
	}
	raw, _ := cmd.Flags().GetStringSlice("sub-langs")
	return splitLangs(raw)
}

func splitLangs(raw []string) []string {
	var langs []string
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
