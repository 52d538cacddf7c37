package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/csvstore"
	"github.com/mgpai22/subtext/internal/logging"
	"github.com/mgpai22/subtext/internal/tracker"
	"github.com/mgpai22/subtext/internal/ytdlp"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download subtitles for every URL in a CSV",
	Long: `Download the manual and automatic subtitles of every video listed in
a CSV file. The file may be a channel listing written by "subtext channel"
or a plain list with one URL per line.

Videos whose captions are already in the subtitle directory are skipped
unless --skip-existing=false is given.

Examples:
  subtext download --csv youtube_dump/a16z.csv --srt-dir subs
  subtext download --with-video --sub-langs en,zh-Hans`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().
		String("csv", "youtube_url.csv", "CSV file with video URLs")
	downloadCmd.Flags().
		String("video-dir", "download_video", "Directory to save downloaded videos")
	downloadCmd.Flags().
		String("srt-dir", "download_srt", "Directory to save downloaded subtitles")
	downloadCmd.Flags().
		Bool("with-video", false, "Download videos in addition to subtitles")
	downloadCmd.Flags().
		StringSlice("sub-langs", nil, "Subtitle languages to request (e.g., en,zh-Hans)")
	downloadCmd.Flags().
		Bool("skip-existing", true, "Skip videos that already have subtitles in --srt-dir")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	csvPath, _ := cmd.Flags().GetString("csv")
	videoDir, _ := cmd.Flags().GetString("video-dir")
	srtDir, _ := cmd.Flags().GetString("srt-dir")
	withVideo, _ := cmd.Flags().GetBool("with-video")
	skipExisting, _ := cmd.Flags().GetBool("skip-existing")

	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		return fmt.Errorf("CSV file not found: %s", csvPath)
	}

	urls, err := csvstore.ReadURLs(csvPath)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in CSV")
	}

	if skipExisting {
		pending, skipped, err := filterDownloaded(srtDir, urls)
		if err != nil {
			return err
		}
		if skipped > 0 {
			logger.Infow("Skipping videos with subtitles on disk", "skipped", skipped)
		}
		urls = pending
	}

	client, err := newYtDlpClient()
	if err != nil {
		return err
	}

	opts := ytdlp.DownloadOptions{
		SubtitleDir: srtDir,
		VideoDir:    videoDir,
		Langs:       subLangs(cmd),
		WithVideo:   withVideo,
	}

	failed := 0
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Infof("[%d/%d] %s", i+1, len(urls), url)
		if err := client.DownloadSubtitles(ctx, url, opts); err != nil {
			failed++
			logger.Errorw("Download failed", "url", url, "error", err)
		}
	}

	if normalize := newNormalizer(); normalize != nil && len(urls) > failed {
		if _, err := normalize(ctx, srtDir); err != nil {
			logger.Warnw("Subtitle normalization failed", "error", err)
		}
	}

	fmt.Printf("Downloaded subtitles for %d of %d videos to %s\n", len(urls)-failed, len(urls), srtDir)
	return nil
}

// drops URLs whose video id already has a captions file in dir
func filterDownloaded(dir string, urls []string) ([]string, int, error) {
	known, err := tracker.ScanDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	pending, unidentified := tracker.PendingByID(known, urls)
	for _, u := range unidentified {
		logging.OrNop(logger).Debugw("Skipping URL without a video id", "url", u)
	}
	return pending, len(urls) - len(pending) - len(unidentified), nil
}
