package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize Markdown transcripts",
	Long: `Summarize a Markdown or text transcript, or every transcript in a
directory. Summaries are written next to the input as <name>_summary.md
unless -o is given.

The default heuristic provider works offline. The gemini, openai and
anthropic providers read their API key from --api-key or from
GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY (a .env file is loaded
automatically).

Examples:
  subtext summarize talk.md --print
  subtext summarize -d youtube_subtitles/a16z/md -o summaries
  subtext summarize talk.md --provider gemini --language Chinese`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().
		StringP("directory", "d", "", "Summarize every article in this directory")
	summarizeCmd.Flags().
		StringP("output", "o", "", "Output file, or output directory with -d")
	summarizeCmd.Flags().
		Bool("brief", false, "Write a brief summary instead of a detailed one")
	summarizeCmd.Flags().
		Bool("print", false, "Print the summary instead of saving it")
	summarizeCmd.Flags().
		String("provider", "", "Summarization provider (heuristic, gemini, openai, anthropic)")
	summarizeCmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	summarizeCmd.Flags().
		StringP("language", "l", "", "Language to write the summary in")
	summarizeCmd.Flags().
		String("prompt", "", "Additional instructions for LLM providers")
	summarizeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's *_API_KEY env var)")
	summarizeCmd.Flags().
		Int("concurrency", summarize.DefaultConcurrency, "Parallel requests for long transcripts")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	dir, _ := cmd.Flags().GetString("directory")
	outputPath, _ := cmd.Flags().GetString("output")
	printOnly, _ := cmd.Flags().GetBool("print")
	brief, _ := cmd.Flags().GetBool("brief")
	apiKey, _ := cmd.Flags().GetString("api-key")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if dir == "" && len(args) == 0 {
		return cmd.Help()
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	provider := summarize.Provider(
		strings.ToLower(stringOr(cmd, "provider", cfg.Summarize.Provider)),
	)
	if apiKey == "" {
		if envVar, ok := summarize.APIKeyEnv[provider]; ok {
			apiKey = os.Getenv(envVar)
			if apiKey == "" {
				return fmt.Errorf(
					"API key is required: use --api-key flag or set %s environment variable",
					envVar,
				)
			}
		}
	}

	opts := summarize.Options{
		Model:       stringOr(cmd, "model", cfg.Summarize.Model),
		Language:    stringOr(cmd, "language", cfg.Summarize.Language),
		Brief:       brief,
		Prompt:      prompt,
		Concurrency: concurrency,
	}

	summarizer, err := summarize.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create summarizer: %w", err)
	}

	if dir != "" {
		return summarizeDirectory(ctx, summarizer, dir, outputPath)
	}

	input := args[0]
	if printOnly {
		summary, err := summarizeFile(ctx, summarizer, input)
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	}

	if outputPath == "" {
		outputPath = summarize.SummaryPath(input)
	}
	if err := summarizeTo(ctx, summarizer, input, outputPath); err != nil {
		return err
	}
	fmt.Printf("Summary written: %s\n", outputPath)
	return nil
}

func summarizeFile(
	ctx context.Context,
	s summarize.Summarizer,
	path string,
) (string, error) {
	doc, err := summarize.ReadDocument(path)
	if err != nil {
		return "", err
	}
	logger.Debugw("Summarizing", "file", path, "title", doc.Title)
	return s.Summarize(ctx, doc)
}

func summarizeTo(
	ctx context.Context,
	s summarize.Summarizer,
	input, output string,
) error {
	summary, err := summarizeFile(ctx, s, input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, []byte(summary), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func summarizeDirectory(
	ctx context.Context,
	s summarize.Summarizer,
	dir, outputDir string,
) error {
	articles, err := summarize.CollectArticles(dir)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Printf("No articles to summarize in %s\n", dir)
		return nil
	}

	logger.Infow("Summarizing articles", "count", len(articles))

	success, failed := 0, 0
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		output := summarize.SummaryPath(article)
		if outputDir != "" {
			output = filepath.Join(outputDir, filepath.Base(output))
		}

		if err := summarizeTo(ctx, s, article, output); err != nil {
			failed++
			logger.Errorw("Summary failed", "file", article, "error", err)
			continue
		}
		success++
		fmt.Printf("Summary written: %s\n", output)
	}

	fmt.Printf("Done: %d succeeded, %d failed\n", success, failed)
	return nil
}
