package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestSplitLangs(t *testing.T) {
	got := splitLangs([]string{" en", "", "zh-Hans ", "  "})
	if diff := cmp.Diff([]string{"en", "zh-Hans"}, got); diff != "" {
		t.Errorf("langs mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterDownloaded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Old [aaa].en.srt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	urls := []string{
		"https://www.youtube.com/watch?v=aaa",
		"https://www.youtube.com/watch?v=bbb",
		"https://example.com/no-id",
	}
	pending, skipped, err := filterDownloaded(dir, urls)
	if err != nil {
		t.Fatalf("filterDownloaded failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}
	// URLs without a video id are never queued
	if diff := cmp.Diff(urls[1:2], pending); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}

	// missing directory means nothing downloaded yet
	pending, _, err = filterDownloaded(filepath.Join(dir, "missing"), urls)
	if err != nil || len(pending) != 2 {
		t.Errorf("expected both identified urls pending, got %v (%v)", pending, err)
	}
}

func newConvertFlags(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	for _, name := range []string{"no-timestamps", "end-time", "plain", "no-dedupe"} {
		cmd.Flags().Bool(name, false, "")
	}
	for name, value := range set {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}
	return cmd
}

func TestConvertOptions(t *testing.T) {
	opts := convertOptions(newConvertFlags(t, nil))
	if !opts.Render.IncludeTimestamps || !opts.Render.Markdown || !opts.Render.DedupeConsecutive {
		t.Errorf("unexpected defaults %+v", opts.Render)
	}
	if opts.Extension != ".md" {
		t.Errorf("Extension = %q", opts.Extension)
	}
}

func TestConvertOptionsPlainNoTimestamps(t *testing.T) {
	cmd := newConvertFlags(t, map[string]string{
		"plain":         "true",
		"no-timestamps": "true",
		"end-time":      "true",
		"no-dedupe":     "true",
	})
	opts := convertOptions(cmd)
	if opts.Render.IncludeTimestamps || opts.Render.IncludeEndTime {
		t.Error("timestamps should be disabled")
	}
	if opts.Render.Markdown || opts.Render.DedupeConsecutive {
		t.Errorf("unexpected render options %+v", opts.Render)
	}
	if opts.Extension != ".txt" {
		t.Errorf("Extension = %q", opts.Extension)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	if err := loadEnv(filepath.Join(dir, ".env"), false); err != nil {
		t.Errorf("missing default env file should be ignored: %v", err)
	}
	if err := loadEnv(filepath.Join(dir, ".env"), true); err == nil {
		t.Error("missing explicit env file should fail")
	}

	path := filepath.Join(dir, "keys.env")
	if err := os.WriteFile(path, []byte("SUBTEXT_TEST_KEY=abc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBTEXT_TEST_KEY", "")
	_ = os.Unsetenv("SUBTEXT_TEST_KEY")
	if err := loadEnv(path, true); err != nil {
		t.Fatalf("loadEnv failed: %v", err)
	}
	if got := os.Getenv("SUBTEXT_TEST_KEY"); got != "abc" {
		t.Errorf("SUBTEXT_TEST_KEY = %q", got)
	}
}

func TestConvertCommandSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Talk [abc].en.srt")
	content := "1\n00:00:01,000 --> 00:00:02,000\nhello\n\n2\n00:00:02,000 --> 00:00:03,000\nhello\n"
	if err := os.WriteFile(src, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{
		"convert", src,
		"--config", filepath.Join(dir, "none.yaml"),
		"--env-file", filepath.Join(dir, ".env"),
	})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for explicitly named files that do not exist")
	}

	cfgPath := filepath.Join(dir, "subtext.yaml")
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(cfgPath, []byte("limit: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(envPath, nil, 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{
		"convert", src,
		"--config", cfgPath,
		"--env-file", envPath,
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Talk [abc].en.md"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "**[00:01]** hello\n" {
		t.Errorf("output = %q", got)
	}
	if cfg.Limit != 5 || cfg.Path() != cfgPath {
		t.Errorf("config not loaded: %+v", cfg)
	}
}
