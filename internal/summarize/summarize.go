package summarize

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// a text to summarize
type Document struct {
	Title   string
	Content string
}

// interface for document summarization
type Summarizer interface {
	Summarize(ctx context.Context, doc Document) (string, error)
}

// summarization backend
type Provider string

const (
	ProviderHeuristic Provider = "heuristic"
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// environment variable holding the API key of each LLM provider
var APIKeyEnv = map[Provider]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

type Options struct {
	Model       string
	Language    string // output language, empty keeps the document's
	Brief       bool
	Prompt      string
	ChunkSize   int // runes per request (default 24000)
	Concurrency int // parallel chunk requests (default 3)
}

// creates Summarizer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Summarizer, error) {
	switch provider {
	case ProviderHeuristic, "":
		return NewHeuristic(opts), nil
	case ProviderGemini:
		return NewGeminiSummarizer(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAISummarizer(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicSummarizer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported summarization provider: %s", provider)
	}
}

// BuildPrompt creates the summarization prompt for LLM providers. part and
// total describe the chunk position; total <= 1 means the whole document.
func BuildPrompt(opts Options, doc Document, part, total int) string {
	var sb strings.Builder

	if total > 1 {
		sb.WriteString(fmt.Sprintf(
			"Summarize part %d of %d of the transcript titled %q.\n\n",
			part,
			total,
			doc.Title,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Summarize the following transcript titled %q.\n\n",
			doc.Title,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Output Markdown only, starting with a level-one heading.\n")
	if opts.Brief {
		sb.WriteString("2. Keep it short: one paragraph and at most 3 key points.\n")
	} else {
		sb.WriteString(
			"2. Include a short overview, keywords, and up to 8 key points.\n",
		)
	}
	sb.WriteString("3. Ignore timestamps such as **[01:02]**.\n")
	if opts.Language != "" {
		sb.WriteString(fmt.Sprintf("4. Write the summary in %s.\n", opts.Language))
	}
	sb.WriteString("\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Transcript:\n")
	sb.WriteString(doc.Content)
	sb.WriteString("\n\nOutput the summary only:")

	return sb.String()
}

// BuildCombinePrompt merges partial summaries into one.
func BuildCombinePrompt(opts Options, doc Document, partials []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"The transcript titled %q was summarized in %d parts. ",
		doc.Title,
		len(partials),
	))
	sb.WriteString("Combine the partial summaries below into one summary.\n\n")
	sb.WriteString("Output Markdown only, starting with a level-one heading.\n")
	if opts.Brief {
		sb.WriteString("Keep it short: one paragraph and at most 3 key points.\n")
	}
	if opts.Language != "" {
		sb.WriteString(fmt.Sprintf("Write the summary in %s.\n", opts.Language))
	}
	sb.WriteString("\n")

	for i, p := range partials {
		sb.WriteString(fmt.Sprintf("--- Part %d ---\n%s\n\n", i+1, p))
	}
	sb.WriteString("Output the combined summary only:")

	return sb.String()
}

var labelPattern = regexp.MustCompile(`\*\*\[[^\]]+\]\*\*`)

// ExtractTitle returns the first plausible title line among the first ten
// lines of content, falling back to a name derived from filename.
func ExtractTitle(content, filename string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "**[") || strings.HasPrefix(line, "#") {
			continue
		}
		clean := strings.TrimSpace(labelPattern.ReplaceAllString(line, ""))
		if n := len([]rune(clean)); n > 5 && n < 200 {
			return clean
		}
	}

	title := filepath.Base(filename)
	title = strings.ReplaceAll(title, ".md", "")
	title = strings.ReplaceAll(title, ".txt", "")
	return strings.ReplaceAll(title, "_", " ")
}

// SummaryPath maps "talk.md" to "talk_summary.md". Other names get the
// suffix appended.
func SummaryPath(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		return input + "_summary.md"
	}
	return strings.TrimSuffix(input, ext) + "_summary" + ext
}

// IsArticle reports whether name is a summarizable document that is not
// itself a summary.
func IsArticle(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	if strings.Contains(base, "summary") {
		return false
	}
	return strings.HasSuffix(base, ".md") || strings.HasSuffix(base, ".txt")
}

// CollectArticles walks dir and returns every article, sorted.
func CollectArticles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var articles []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsArticle(d.Name()) {
			articles = append(articles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	sort.Strings(articles)
	return articles, nil
}

// ReadDocument loads a file and derives its title.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read article: %w", err)
	}
	content := string(data)
	return Document{
		Title:   ExtractTitle(content, filepath.Base(path)),
		Content: content,
	}, nil
}
