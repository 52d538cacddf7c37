package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/fetch"
	"github.com/mgpai22/subtext/internal/ytdlp"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Write a channel's video list to CSV",
	Long: `List the videos of a YouTube channel with yt-dlp and write title,
duration, upload date, view count and URL for each one to a CSV file.

With --append, rows whose URL is already in the file are skipped.

Examples:
  subtext channel --channel-url https://www.youtube.com/@a16z/videos
  subtext channel --channel-url https://www.youtube.com/@joerogan --limit 20 --append`,
	Args: cobra.NoArgs,
	RunE: runChannel,
}

func init() {
	rootCmd.AddCommand(channelCmd)

	channelCmd.Flags().
		String("channel-url", "", "YouTube channel URL (use /videos for the videos tab if needed)")
	channelCmd.Flags().
		StringP("output", "o", "", "CSV file path (default: <csv_dir>/<handle>.csv)")
	channelCmd.Flags().
		Bool("append", false, "Append to the CSV instead of overwriting and skip known URLs")
	channelCmd.Flags().
		Int("limit", 0, "Limit the number of videos to fetch (0 = all)")

	_ = channelCmd.MarkFlagRequired("channel-url")
}

func runChannel(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	channelURL, _ := cmd.Flags().GetString("channel-url")
	outputPath, _ := cmd.Flags().GetString("output")
	appendMode, _ := cmd.Flags().GetBool("append")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", limit)
	}

	if outputPath == "" {
		handle := ytdlp.ExtractHandle(channelURL)
		if handle == "" {
			return fmt.Errorf(
				"failed to parse channel handle from URL (missing @handle): use --output",
			)
		}
		outputPath = filepath.Join(cfg.CSVDir, handle+".csv")
	}

	client, err := newYtDlpClient()
	if err != nil {
		return err
	}

	logger.Infow("Fetching channel list",
		"url", channelURL,
		"limit", limit,
	)

	entries, err := client.ListChannel(ctx, channelURL, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no video entries found")
	}

	written, err := fetch.WriteListing(outputPath, entries, appendMode)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %d rows to %s\n", written, outputPath)
	return nil
}
