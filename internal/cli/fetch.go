package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new subtitles from a list of channels",
	Long: `For every channel in the channels file, record its latest videos in
<csv-dir>/<handle>.csv and download subtitles for videos that have none in
<srt-dir>/<handle>/srt yet.

Without --incremental every video in the channel CSV is checked; with it
only the videos listed in this run are.

Examples:
  subtext fetch
  subtext fetch --channels channels.txt --limit 5 --incremental`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().
		String("channels", "channels.txt", "File containing YouTube channel URLs (one per line)")
	fetchCmd.Flags().
		Int("limit", 10, "Number of latest videos to fetch from each channel")
	fetchCmd.Flags().
		String("csv-dir", "youtube_dump", "Directory to save channel CSV files")
	fetchCmd.Flags().
		String("srt-dir", "youtube_subtitles", "Base directory for subtitle files")
	fetchCmd.Flags().
		Bool("incremental", false, "Only consider videos listed in this run")
	fetchCmd.Flags().
		StringSlice("sub-langs", nil, "Subtitle languages to request (e.g., en,zh-Hans)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	channelsPath, _ := cmd.Flags().GetString("channels")
	incremental, _ := cmd.Flags().GetBool("incremental")
	limit := intOr(cmd, "limit", cfg.Limit)
	csvDir := stringOr(cmd, "csv-dir", cfg.CSVDir)
	srtDir := stringOr(cmd, "srt-dir", cfg.SubtitleDir)

	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	if _, err := os.Stat(channelsPath); os.IsNotExist(err) {
		return fmt.Errorf("channels file not found: %s", channelsPath)
	}

	channels, err := fetch.ReadChannels(channelsPath)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return fmt.Errorf("no channels found in %s", channelsPath)
	}

	for _, dir := range []string{csvDir, srtDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	client, err := newYtDlpClient()
	if err != nil {
		return err
	}

	fetcher := &fetch.Fetcher{
		Lister:      client,
		Downloader:  client,
		Normalizer:  newNormalizer(),
		CSVDir:      csvDir,
		SubtitleDir: srtDir,
		Limit:       limit,
		Langs:       subLangs(cmd),
		Incremental: incremental,
		Logger:      logger,
	}

	report, err := fetcher.Run(ctx, channels)
	if err != nil {
		return err
	}

	for _, c := range report.Channels {
		fmt.Printf("%s: %d listed, %d new, %d downloaded, %d failed\n",
			c.Channel, c.Listed, c.New, c.Downloaded, c.Failed)
	}
	for url, err := range report.Errors {
		fmt.Printf("Failed: %s (%v)\n", url, err)
	}
	fmt.Printf("All subtitles saved to: %s\n", srtDir)
	return nil
}
