package cli

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert SRT subtitles to readable Markdown",
	Long: `Convert subtitle files into readable Markdown transcripts. Consecutive
duplicate captions and inline markup are removed.

With a file argument only that file is converted. Otherwise --channel
converts <base-dir>/<channel>/srt into <base-dir>/<channel>/md, --srt-dir
converts one directory, and with neither every channel under --base-dir is
converted.

Examples:
  subtext convert "Talk [abc123].en.srt" --copy
  subtext convert --channel a16z
  subtext convert --srt-dir subs --md-dir notes --no-timestamps`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().
		String("channel", "", "Channel name to process (e.g., a16z, joerogan)")
	convertCmd.Flags().
		String("srt-dir", "", "Directory containing subtitle files")
	convertCmd.Flags().
		String("md-dir", "", "Output directory for Markdown files")
	convertCmd.Flags().
		String("base-dir", "", "Base directory holding <channel>/srt folders (default: subtitle_dir from config)")
	convertCmd.Flags().
		StringP("output", "o", "", "Output file path (single file only)")
	convertCmd.Flags().
		Bool("no-timestamps", false, "Remove timestamps from output")
	convertCmd.Flags().
		Bool("end-time", false, "Include caption end times in labels")
	convertCmd.Flags().
		Bool("plain", false, "Write plain text labels instead of Markdown")
	convertCmd.Flags().
		Bool("no-dedupe", false, "Keep consecutive duplicate captions")
	convertCmd.Flags().
		Bool("copy", false, "Copy the converted text to the clipboard (single file only)")
}

func convertOptions(cmd *cobra.Command) convert.Options {
	noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
	endTime, _ := cmd.Flags().GetBool("end-time")
	plain, _ := cmd.Flags().GetBool("plain")
	noDedupe, _ := cmd.Flags().GetBool("no-dedupe")

	opts := convert.DefaultOptions()
	opts.Render.IncludeTimestamps = !noTimestamps
	opts.Render.IncludeEndTime = endTime && !noTimestamps
	opts.Render.Markdown = !plain
	opts.Render.DedupeConsecutive = !noDedupe
	if plain {
		opts.Extension = ".txt"
	}
	return opts
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts := convertOptions(cmd)

	if len(args) == 1 {
		return convertSingle(cmd, args[0], opts)
	}

	channel, _ := cmd.Flags().GetString("channel")
	srtDir, _ := cmd.Flags().GetString("srt-dir")
	mdDir, _ := cmd.Flags().GetString("md-dir")
	baseDir := stringOr(cmd, "base-dir", cfg.SubtitleDir)

	var (
		result *convert.DirResult
		err    error
	)
	switch {
	case channel != "":
		defSrt, defMd := convert.ChannelDirs(baseDir, channel)
		if srtDir == "" {
			srtDir = defSrt
		}
		if mdDir == "" {
			mdDir = defMd
		}
		result, err = convert.Dir(srtDir, mdDir, opts, logger)
	case srtDir != "":
		if mdDir == "" {
			mdDir = filepath.Join(filepath.Dir(filepath.Clean(srtDir)), "md")
		}
		result, err = convert.Dir(srtDir, mdDir, opts, logger)
	default:
		logger.Infow("Converting all channels", "base_dir", baseDir)
		result, err = convert.Channels(baseDir, opts, logger)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Converted %d files", result.Converted)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println()
	return nil
}

func convertSingle(cmd *cobra.Command, src string, opts convert.Options) error {
	outputPath, _ := cmd.Flags().GetString("output")
	copyText, _ := cmd.Flags().GetBool("copy")

	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(src), convert.OutputName(src, opts))
	}

	result, err := convert.File(src, outputPath, opts)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", src, err)
	}

	if result.Skipped > 0 {
		logger.Warnw("Skipped malformed caption blocks", "skipped", result.Skipped)
	}

	if copyText {
		if err := clipboard.WriteAll(result.Content); err != nil {
			logger.Warnw("Failed to copy to clipboard", "error", err)
		} else {
			logger.Infow("Copied to clipboard")
		}
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Converted: %s\n", absOutput)
	fmt.Printf("  Format: %s\n", result.Format)
	fmt.Printf("  Records: %d\n", result.Records)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped blocks: %d\n", result.Skipped)
	}
	return nil
}
