package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	DefaultChunkSize   = 24000
	DefaultConcurrency = 3
)

// one prompt in, model text out
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency
}

// SplitChunks breaks content on paragraph boundaries into pieces of at most
// size runes. A single paragraph longer than size is cut at rune
// boundaries.
func SplitChunks(content string, size int) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if size <= 0 || utf8.RuneCountInString(content) <= size {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := utf8.RuneCountInString(para)

		if n > size {
			flush()
			runes := []rune(para)
			for i := 0; i < len(runes); i += size {
				end := min(i+size, len(runes))
				chunks = append(chunks, string(runes[i:end]))
			}
			continue
		}

		// +2 for the paragraph separator
		if currentLen > 0 && currentLen+2+n > size {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(para)
		currentLen += n
	}
	flush()

	return chunks
}

// summarizeChunked summarizes short documents in one request. Longer ones
// are split into chunks that workers (up to opts.Concurrency) summarize in
// parallel; the partial summaries are then combined in a final request.
func summarizeChunked(
	ctx context.Context,
	c completer,
	doc Document,
	opts Options,
) (string, error) {
	chunks := SplitChunks(doc.Content, opts.chunkSize())
	if len(chunks) == 0 {
		return "", fmt.Errorf("document is empty")
	}
	if len(chunks) == 1 {
		out, err := c.complete(ctx, BuildPrompt(opts, doc, 1, 1))
		if err != nil {
			return "", err
		}
		return cleanMarkdownResponse(out), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type chunkResult struct {
		Index int
		Text  string
		Error error
	}

	workChan := make(chan int)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < opts.concurrency() && i < len(chunks); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					part := Document{Title: doc.Title, Content: chunks[idx]}
					text, err := c.complete(ctx, BuildPrompt(opts, part, idx+1, len(chunks)))
					if err != nil {
						cancel()
					}
					resultChan <- chunkResult{Index: idx, Text: text, Error: err}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	partials := make([]string, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("chunk %d failed: %w", result.Index, result.Error)
			cancel()
		}
		if result.Error == nil {
			partials[result.Index] = cleanMarkdownResponse(result.Text)
		}
	}

	if firstErr != nil {
		return "", firstErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := c.complete(ctx, BuildCombinePrompt(opts, doc, partials))
	if err != nil {
		return "", fmt.Errorf("combining summaries failed: %w", err)
	}
	return cleanMarkdownResponse(out), nil
}

var markdownFence = regexp.MustCompile("^```(?:markdown|md)?\\s*")

// strips a code fence some models wrap their whole answer in
func cleanMarkdownResponse(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = markdownFence.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
