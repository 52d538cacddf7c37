package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/subtext/internal/csvstore"
	"github.com/mgpai22/subtext/internal/logging"
	"github.com/mgpai22/subtext/internal/tracker"
	"github.com/mgpai22/subtext/internal/ytdlp"
)

const unknownChannel = "unknown"

// Lister returns the newest videos of a channel.
type Lister interface {
	ListChannel(ctx context.Context, channelURL string, limit int) ([]ytdlp.Entry, error)
}

// SubtitleDownloader fetches the captions of one video.
type SubtitleDownloader interface {
	DownloadSubtitles(ctx context.Context, url string, opts ytdlp.DownloadOptions) error
}

// ReadChannels reads one channel URL per line, skipping blanks and
// "#" comments.
func ReadChannels(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open channels file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var channels []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		channels = append(channels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read channels file: %w", err)
	}
	return channels, nil
}

// ChannelName is the @handle of a channel URL, or "unknown".
func ChannelName(channelURL string) string {
	if h := ytdlp.ExtractHandle(channelURL); h != "" {
		return h
	}
	return unknownChannel
}

// result of one channel run
type ChannelReport struct {
	Channel    string
	CSVPath    string
	SRTDir     string
	Listed     int
	Appended   int
	Candidates int
	New        int
	Downloaded int
	Failed     int
}

// Report aggregates a multi-channel run.
type Report struct {
	Channels []*ChannelReport
	Errors   map[string]error
}

func (r *Report) Downloaded() int {
	total := 0
	for _, c := range r.Channels {
		total += c.Downloaded
	}
	return total
}

// Fetcher lists channels, records their videos and downloads captions for
// videos that have none on disk yet.
type Fetcher struct {
	Lister      Lister
	Downloader  SubtitleDownloader
	Normalizer  func(ctx context.Context, dir string) (int, error)
	CSVDir      string
	SubtitleDir string
	Limit       int
	Langs       []string
	// restricts downloads to the videos listed in this run instead of the
	// whole channel CSV
	Incremental bool
	Logger      *logging.Logger
}

func (f *Fetcher) logger() *logging.Logger {
	return logging.OrNop(f.Logger)
}

// CSVPath is where a channel listing is stored.
func (f *Fetcher) CSVPath(channel string) string {
	return filepath.Join(f.CSVDir, channel+".csv")
}

// SRTDir is where a channel's captions are stored.
func (f *Fetcher) SRTDir(channel string) string {
	return filepath.Join(f.SubtitleDir, channel, "srt")
}

// RunChannel processes one channel.
func (f *Fetcher) RunChannel(
	ctx context.Context,
	channelURL string,
) (*ChannelReport, error) {
	if f.Lister == nil || f.Downloader == nil {
		return nil, errors.New("fetcher requires a lister and a downloader")
	}

	logger := f.logger()
	channel := ChannelName(channelURL)
	report := &ChannelReport{
		Channel: channel,
		CSVPath: f.CSVPath(channel),
		SRTDir:  f.SRTDir(channel),
	}

	logger.Infow("Processing channel", "channel", channel, "url", channelURL)

	entries, err := f.Lister.ListChannel(ctx, channelURL, f.Limit)
	if err != nil {
		return report, err
	}
	report.Listed = len(entries)

	listed, appended, err := appendEntries(report.CSVPath, entries)
	if err != nil {
		return report, err
	}
	report.Appended = appended
	logger.Debugw("Updated channel listing",
		"csv", report.CSVPath,
		"listed", report.Listed,
		"appended", appended,
	)

	candidates := listed
	if !f.Incremental {
		candidates, err = csvstore.ReadURLs(report.CSVPath)
		if err != nil {
			return report, err
		}
	}
	report.Candidates = len(candidates)

	known, err := tracker.ScanDir(report.SRTDir)
	if err != nil {
		return report, fmt.Errorf("failed to scan %s: %w", report.SRTDir, err)
	}

	pending, unidentified := tracker.PendingByID(known, candidates)
	for _, u := range unidentified {
		logger.Debugw("Skipping URL without a video id", "url", u)
	}
	report.New = len(pending)
	logger.Infow("New videos",
		"channel", channel,
		"new", report.New,
		"known", known.Len(),
	)

	opts := ytdlp.DownloadOptions{SubtitleDir: report.SRTDir, Langs: f.Langs}
	for i, url := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		logger.Infof("[%d/%d] %s", i+1, len(pending), url)
		if err := f.Downloader.DownloadSubtitles(ctx, url, opts); err != nil {
			report.Failed++
			logger.Warnw("Subtitle download failed", "url", url, "error", err)
			continue
		}
		report.Downloaded++
	}

	if f.Normalizer != nil && report.Downloaded > 0 {
		n, err := f.Normalizer(ctx, report.SRTDir)
		if err != nil {
			logger.Warnw("Subtitle normalization failed", "dir", report.SRTDir, "error", err)
		} else if n > 0 {
			logger.Debugw("Normalized subtitles", "dir", report.SRTDir, "converted", n)
		}
	}

	return report, nil
}

// Run processes channels in order. A failing channel is recorded and the
// rest still run; only context cancellation stops the loop.
func (f *Fetcher) Run(ctx context.Context, channels []string) (*Report, error) {
	report := &Report{Errors: make(map[string]error)}
	for _, channelURL := range channels {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		cr, err := f.RunChannel(ctx, channelURL)
		if cr != nil {
			report.Channels = append(report.Channels, cr)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			report.Errors[channelURL] = err
			f.logger().Errorw("Channel failed", "url", channelURL, "error", err)
		}
	}
	return report, nil
}

// appendEntries adds unseen entries to the listing at path and returns the
// canonical URLs of all listed entries plus the number appended.
func appendEntries(path string, entries []ytdlp.Entry) ([]string, int, error) {
	urls, _ := canonicalEntries(entries)
	written, err := WriteListing(path, entries, true)
	if err != nil {
		return nil, 0, err
	}
	return urls, written, nil
}

// WriteListing stores entries as CSV rows at path. In append mode entries
// whose URL is already in the file are skipped; otherwise the file is
// replaced. Returns the number of rows written.
func WriteListing(path string, entries []ytdlp.Entry, appendMode bool) (int, error) {
	urls, byURL := canonicalEntries(entries)

	existing := tracker.NewSet()
	if appendMode {
		var err error
		if existing, err = csvstore.LoadURLs(path); err != nil {
			return 0, err
		}
	}

	fresh := tracker.FilterNew(existing, urls)
	rows := make([]csvstore.Row, 0, len(fresh))
	for _, u := range fresh {
		rows = append(rows, RowFromEntry(byURL[u]))
	}
	return csvstore.Write(path, rows, appendMode)
}

// canonical URLs in listing order, first entry wins on duplicates
func canonicalEntries(entries []ytdlp.Entry) ([]string, map[string]ytdlp.Entry) {
	urls := make([]string, 0, len(entries))
	byURL := make(map[string]ytdlp.Entry, len(entries))
	for _, e := range entries {
		u := e.CanonicalURL()
		if u == "" {
			continue
		}
		if _, dup := byURL[u]; dup {
			continue
		}
		byURL[u] = e
		urls = append(urls, u)
	}
	return urls, byURL
}

// RowFromEntry converts a listing entry to its CSV representation.
func RowFromEntry(e ytdlp.Entry) csvstore.Row {
	views := ""
	if e.ViewCount > 0 {
		views = strconv.FormatInt(e.ViewCount, 10)
	}
	return csvstore.Row{
		Title:      e.Title,
		Duration:   csvstore.FormatDuration(e.Duration),
		UploadDate: csvstore.FormatUploadDate(e.UploadDate),
		ViewCount:  views,
		WebpageURL: e.CanonicalURL(),
	}
}
