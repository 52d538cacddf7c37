package summarize

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFactoryDefaultsToHeuristic(t *testing.T) {
	ctx := context.Background()
	for _, p := range []Provider{"", ProviderHeuristic} {
		s, err := Factory(ctx, p, "", Options{})
		if err != nil {
			t.Fatalf("Factory(%q) returned error: %v", p, err)
		}
		if _, ok := s.(*Heuristic); !ok {
			t.Errorf("expected *Heuristic, got %T", s)
		}
	}
}

func TestFactoryReturnsGeminiSummarizer(t *testing.T) {
	s, err := Factory(context.Background(), ProviderGemini, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := s.(*GeminiSummarizer); !ok {
		t.Errorf("expected *GeminiSummarizer, got %T", s)
	}
}

func TestFactoryReturnsOpenAISummarizer(t *testing.T) {
	s, err := Factory(context.Background(), ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := s.(*OpenAISummarizer); !ok {
		t.Errorf("expected *OpenAISummarizer, got %T", s)
	}
}

func TestFactoryReturnsAnthropicSummarizer(t *testing.T) {
	s, err := Factory(context.Background(), ProviderAnthropic, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := s.(*AnthropicSummarizer); !ok {
		t.Errorf("expected *AnthropicSummarizer, got %T", s)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic} {
		if _, err := Factory(context.Background(), p, "", Options{}); err == nil {
			t.Errorf("expected error for %s without API key", p)
		}
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("unknown"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuildPrompt(t *testing.T) {
	doc := Document{Title: "Episode 12", Content: "**[00:01]** hello there"}
	prompt := BuildPrompt(Options{Language: "Chinese", Prompt: "focus on numbers"}, doc, 1, 1)

	for _, want := range []string{
		`titled "Episode 12"`,
		"Write the summary in Chinese",
		"Additional instructions: focus on numbers",
		"**[00:01]** hello there",
		"up to 8 key points",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if strings.Contains(prompt, "part 1 of") {
		t.Error("single-chunk prompt should not mention parts")
	}
}

func TestBuildPromptBriefAndPart(t *testing.T) {
	prompt := BuildPrompt(Options{Brief: true}, Document{Title: "T", Content: "x"}, 2, 3)
	if !strings.Contains(prompt, "part 2 of 3") {
		t.Error("prompt should contain the chunk position")
	}
	if !strings.Contains(prompt, "at most 3 key points") {
		t.Error("brief prompt should limit key points")
	}
	if strings.Contains(prompt, "Write the summary in") {
		t.Error("prompt should not set a language when none is configured")
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     string
	}{
		{
			name:     "first plain line",
			content:  "# heading\n**[00:01]** label line\nThe real title here\nbody",
			filename: "x.md",
			want:     "The real title here",
		},
		{
			name:     "labels only falls back to filename",
			content:  "**[00:01]** hi\n**[00:02]** there",
			filename: "my_talk.en.md",
			want:     "my talk.en",
		},
		{
			name:     "short lines skipped",
			content:  "ok\nyes\n",
			filename: "notes.txt",
			want:     "notes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.content, tt.filename); got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryPath(t *testing.T) {
	tests := map[string]string{
		"talk.md":          "talk_summary.md",
		"dir/a [id].en.md": "dir/a [id].en_summary.md",
		"notes.txt":        "notes_summary.txt",
		"README":           "README_summary.md",
	}
	for input, want := range tests {
		if got := SummaryPath(input); got != want {
			t.Errorf("SummaryPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCollectArticles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"a.md",
		"a_summary.md",
		"sub/b.txt",
		"sub/c.srt",
		"Summary.md",
	} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := CollectArticles(dir)
	if err != nil {
		t.Fatalf("CollectArticles failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.md"), filepath.Join(dir, "sub", "b.txt")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}

	if _, err := CollectArticles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestReadDocument(t *testing.T) {
	p := filepath.Join(t.TempDir(), "episode_one.md")
	if err := os.WriteFile(p, []byte("**[00:01]** hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := ReadDocument(p)
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if doc.Title != "episode one" {
		t.Errorf("Title = %q", doc.Title)
	}
}

// Integration test: only runs if GEMINI_API_KEY is set
func TestGeminiSummarizerIntegration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	s, err := NewGeminiSummarizer(ctx, apiKey, Options{Brief: true})
	if err != nil {
		t.Fatalf("NewGeminiSummarizer error: %v", err)
	}

	out, err := s.Summarize(ctx, Document{
		Title:   "Test",
		Content: "**[00:01]** Today we discuss how caching reduces latency in web services.",
	})
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if out == "" {
		t.Error("expected a non-empty summary")
	}
}
