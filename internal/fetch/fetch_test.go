package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mgpai22/subtext/internal/csvstore"
	"github.com/mgpai22/subtext/internal/ytdlp"
)

type fakeLister struct {
	entries map[string][]ytdlp.Entry
	err     error
	limits  []int
}

func (f *fakeLister) ListChannel(
	ctx context.Context,
	channelURL string,
	limit int,
) ([]ytdlp.Entry, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[channelURL], nil
}

// records requested URLs and writes a captions file named like yt-dlp does
type fakeDownloader struct {
	urls []string
	fail map[string]bool
}

func (f *fakeDownloader) DownloadSubtitles(
	ctx context.Context,
	url string,
	opts ytdlp.DownloadOptions,
) error {
	f.urls = append(f.urls, url)
	if f.fail[url] {
		return errors.New("no subtitles")
	}
	if err := os.MkdirAll(opts.SubtitleDir, 0755); err != nil {
		return err
	}
	name := "Video [" + url[len(url)-3:] + "].en.srt"
	return os.WriteFile(filepath.Join(opts.SubtitleDir, name), []byte("1\n00:00:00,000 --> 00:00:01,000\nx\n"), 0644)
}

func entry(id string) ytdlp.Entry {
	return ytdlp.Entry{
		ID:         id,
		Title:      "Video " + id,
		URL:        "https://www.youtube.com/watch?v=" + id,
		Duration:   3725,
		UploadDate: "20240102",
	}
}

func newFetcher(t *testing.T, lister *fakeLister, dl *fakeDownloader) *Fetcher {
	t.Helper()
	base := t.TempDir()
	return &Fetcher{
		Lister:      lister,
		Downloader:  dl,
		CSVDir:      filepath.Join(base, "csv"),
		SubtitleDir: filepath.Join(base, "subs"),
		Limit:       10,
	}
}

func TestReadChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.txt")
	content := "# news\nhttps://www.youtube.com/@a/videos\n\n  https://www.youtube.com/@b  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadChannels(path)
	if err != nil {
		t.Fatalf("ReadChannels failed: %v", err)
	}
	want := []string{"https://www.youtube.com/@a/videos", "https://www.youtube.com/@b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("channels mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadChannels(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestChannelName(t *testing.T) {
	if got := ChannelName("https://www.youtube.com/@joerogan/videos"); got != "joerogan" {
		t.Errorf("ChannelName = %q", got)
	}
	if got := ChannelName("https://www.youtube.com/channel/UC1"); got != "unknown" {
		t.Errorf("ChannelName = %q, want unknown", got)
	}
}

func TestRunChannelDownloadsOnlyNewVideos(t *testing.T) {
	const url = "https://www.youtube.com/@chan/videos"
	lister := &fakeLister{entries: map[string][]ytdlp.Entry{
		url: {entry("aaa"), entry("bbb"), entry("ccc")},
	}}
	dl := &fakeDownloader{}
	f := newFetcher(t, lister, dl)

	// "bbb" already has captions on disk
	srtDir := f.SRTDir("chan")
	if err := os.MkdirAll(srtDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srtDir, "Old [bbb].en.srt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	report, err := f.RunChannel(context.Background(), url)
	if err != nil {
		t.Fatalf("RunChannel failed: %v", err)
	}

	want := []string{
		"https://www.youtube.com/watch?v=aaa",
		"https://www.youtube.com/watch?v=ccc",
	}
	if diff := cmp.Diff(want, dl.urls); diff != "" {
		t.Errorf("downloaded urls mismatch (-want +got):\n%s", diff)
	}

	wantReport := &ChannelReport{
		Channel:    "chan",
		CSVPath:    f.CSVPath("chan"),
		SRTDir:     srtDir,
		Listed:     3,
		Appended:   3,
		Candidates: 3,
		New:        2,
		Downloaded: 2,
	}
	if diff := cmp.Diff(wantReport, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{10}, lister.limits); diff != "" {
		t.Errorf("limit mismatch (-want +got):\n%s", diff)
	}
}

func TestRunChannelIsIdempotent(t *testing.T) {
	const url = "https://www.youtube.com/@chan"
	lister := &fakeLister{entries: map[string][]ytdlp.Entry{
		url: {entry("aaa"), entry("bbb")},
	}}
	dl := &fakeDownloader{}
	f := newFetcher(t, lister, dl)

	if _, err := f.RunChannel(context.Background(), url); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	report, err := f.RunChannel(context.Background(), url)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if report.Appended != 0 || report.New != 0 || report.Downloaded != 0 {
		t.Errorf("second run should be a no-op, got %+v", report)
	}
	if len(dl.urls) != 2 {
		t.Errorf("expected 2 downloads overall, got %d", len(dl.urls))
	}

	urls, err := csvstore.ReadURLs(f.CSVPath("chan"))
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 {
		t.Errorf("CSV should hold each video once, got %v", urls)
	}
}

func TestRunChannelSkipsURLsWithoutVideoID(t *testing.T) {
	const url = "https://www.youtube.com/@chan"
	playlist := ytdlp.Entry{Title: "Mix", URL: "https://www.youtube.com/playlist?list=PLx"}
	lister := &fakeLister{entries: map[string][]ytdlp.Entry{
		url: {playlist, entry("aaa")},
	}}
	dl := &fakeDownloader{}
	f := newFetcher(t, lister, dl)

	for run := 1; run <= 2; run++ {
		report, err := f.RunChannel(context.Background(), url)
		if err != nil {
			t.Fatalf("run %d failed: %v", run, err)
		}
		if run == 2 && (report.New != 0 || report.Downloaded != 0) {
			t.Errorf("second run should download nothing, got %+v", report)
		}
	}
	if diff := cmp.Diff([]string{"https://www.youtube.com/watch?v=aaa"}, dl.urls); diff != "" {
		t.Errorf("downloaded urls mismatch (-want +got):\n%s", diff)
	}
}

func TestRunChannelIncrementalIgnoresOlderRows(t *testing.T) {
	const url = "https://www.youtube.com/@chan"
	lister := &fakeLister{entries: map[string][]ytdlp.Entry{url: {entry("new")}}}
	dl := &fakeDownloader{}
	f := newFetcher(t, lister, dl)
	f.Incremental = true

	// an older row that never got captions
	_, err := csvstore.Write(f.CSVPath("chan"), []csvstore.Row{
		{Title: "Old", WebpageURL: "https://www.youtube.com/watch?v=old"},
	}, false)
	if err != nil {
		t.Fatal(err)
	}

	report, err := f.RunChannel(context.Background(), url)
	if err != nil {
		t.Fatalf("RunChannel failed: %v", err)
	}
	if diff := cmp.Diff([]string{"https://www.youtube.com/watch?v=new"}, dl.urls); diff != "" {
		t.Errorf("downloaded urls mismatch (-want +got):\n%s", diff)
	}
	if report.Candidates != 1 {
		t.Errorf("expected 1 candidate, got %d", report.Candidates)
	}

	f.Incremental = false
	dl.urls = nil
	if _, err := f.RunChannel(context.Background(), url); err != nil {
		t.Fatalf("RunChannel failed: %v", err)
	}
	if diff := cmp.Diff([]string{"https://www.youtube.com/watch?v=old"}, dl.urls); diff != "" {
		t.Errorf("full run should pick up older rows (-want +got):\n%s", diff)
	}
}

func TestRunChannelCountsFailures(t *testing.T) {
	const url = "https://www.youtube.com/@chan"
	lister := &fakeLister{entries: map[string][]ytdlp.Entry{
		url: {entry("aaa"), entry("bbb")},
	}}
	dl := &fakeDownloader{fail: map[string]bool{"https://www.youtube.com/watch?v=aaa": true}}
	f := newFetcher(t, lister, dl)

	normalized := ""
	f.Normalizer = func(ctx context.Context, dir string) (int, error) {
		normalized = dir
		return 0, nil
	}

	report, err := f.RunChannel(context.Background(), url)
	if err != nil {
		t.Fatalf("RunChannel failed: %v", err)
	}
	if report.Failed != 1 || report.Downloaded != 1 {
		t.Errorf("expected 1 failed and 1 downloaded, got %+v", report)
	}
	if normalized != f.SRTDir("chan") {
		t.Errorf("normalizer called with %q", normalized)
	}
}

func TestRunContinuesAfterChannelFailure(t *testing.T) {
	good := "https://www.youtube.com/@good"
	lister := &fakeLister{entries: map[string][]ytdlp.Entry{good: {entry("aaa")}}}
	dl := &fakeDownloader{}
	f := newFetcher(t, lister, dl)

	failing := &failingLister{bad: "https://www.youtube.com/@bad", next: lister}
	f.Lister = failing

	report, err := f.Run(context.Background(), []string{"https://www.youtube.com/@bad", good})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Errors) != 1 {
		t.Errorf("expected 1 channel error, got %v", report.Errors)
	}
	if report.Downloaded() != 1 {
		t.Errorf("expected 1 download, got %d", report.Downloaded())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFetcher(t, &fakeLister{}, &fakeDownloader{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Run(ctx, []string{"https://www.youtube.com/@a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type failingLister struct {
	bad  string
	next Lister
}

func (f *failingLister) ListChannel(
	ctx context.Context,
	channelURL string,
	limit int,
) ([]ytdlp.Entry, error) {
	if channelURL == f.bad {
		return nil, errors.New("yt-dlp failed to fetch the list")
	}
	return f.next.ListChannel(ctx, channelURL, limit)
}

func TestRowFromEntry(t *testing.T) {
	e := entry("aaa")
	e.ViewCount = 42
	want := csvstore.Row{
		Title:      "Video aaa",
		Duration:   "1 时 2 分",
		UploadDate: "2024-01-02",
		ViewCount:  "42",
		WebpageURL: "https://www.youtube.com/watch?v=aaa",
	}
	if diff := cmp.Diff(want, RowFromEntry(e)); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteListing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chan.csv")

	n, err := WriteListing(path, []ytdlp.Entry{entry("aaa"), entry("bbb"), entry("aaa")}, false)
	if err != nil {
		t.Fatalf("WriteListing failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}

	n, err = WriteListing(path, []ytdlp.Entry{entry("bbb"), entry("ccc")}, true)
	if err != nil {
		t.Fatalf("WriteListing append failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected only ccc to be appended, got %d", n)
	}

	urls, err := csvstore.ReadURLs(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"https://www.youtube.com/watch?v=aaa",
		"https://www.youtube.com/watch?v=bbb",
		"https://www.youtube.com/watch?v=ccc",
	}
	if diff := cmp.Diff(want, urls); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}

	// overwrite replaces the file
	if _, err := WriteListing(path, []ytdlp.Entry{entry("zzz")}, false); err != nil {
		t.Fatal(err)
	}
	urls, _ = csvstore.ReadURLs(path)
	if diff := cmp.Diff([]string{"https://www.youtube.com/watch?v=zzz"}, urls); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}
}
