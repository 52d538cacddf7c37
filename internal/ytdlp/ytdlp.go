package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/tidwall/gjson"

	"github.com/mgpai22/subtext/internal/logging"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// one video of a channel listing
type Entry struct {
	ID         string
	Title      string
	URL        string // webpage_url, falling back to url
	Duration   float64
	UploadDate string // YYYYMMDD as reported by yt-dlp
	ViewCount  int64
}

// CanonicalURL returns a full watch URL; bare ids are expanded.
func (e Entry) CanonicalURL() string {
	u := e.URL
	if u == "" {
		u = e.ID
	}
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http") {
		return watchURLPrefix + u
	}
	return u
}

// holds options for subtitle downloads
type DownloadOptions struct {
	SubtitleDir string
	VideoDir    string   // home path; also where videos land with WithVideo
	Langs       []string // empty means whatever yt-dlp picks by default
	WithVideo   bool
}

// Client drives the yt-dlp binary through go-ytdlp command builders.
type Client struct {
	Path   string
	Proxy  string
	Logger *logging.Logger
}

func NewClient(path, proxy string, logger *logging.Logger) *Client {
	return &Client{
		Path:   path,
		Proxy:  proxy,
		Logger: logging.OrNop(logger),
	}
}

// command returns a builder with the flags shared by every invocation.
func (c *Client) command() *goytdlp.Command {
	cmd := goytdlp.New()
	if c.Path != "" {
		cmd.SetExecutable(c.Path)
	}
	if c.Proxy != "" {
		cmd.Proxy(c.Proxy)
	}
	return cmd
}

func (c *Client) listCommand(limit int) *goytdlp.Command {
	cmd := c.command().
		SkipDownload().
		DumpSingleJSON()
	if limit > 0 {
		cmd.PlaylistEnd(limit)
	}
	return cmd
}

func (c *Client) downloadCommand(opts DownloadOptions) (*goytdlp.Command, error) {
	srtDir, err := filepath.Abs(opts.SubtitleDir)
	if err != nil {
		return nil, err
	}

	cmd := c.command().
		WriteSubs().
		WriteAutoSubs().
		SubFormat("srt/best")
	if len(opts.Langs) > 0 {
		cmd.SubLangs(strings.Join(opts.Langs, ","))
	}
	if !opts.WithVideo {
		cmd.SkipDownload()
	}
	if opts.VideoDir != "" {
		videoDir, err := filepath.Abs(opts.VideoDir)
		if err != nil {
			return nil, err
		}
		cmd.Paths("home:" + videoDir)
	}
	cmd.Paths("subtitle:" + srtDir)
	return cmd, nil
}

// run executes cmd against url and returns its stdout. yt-dlp's stderr is
// folded into the error.
func (c *Client) run(
	ctx context.Context,
	cmd *goytdlp.Command,
	url string,
) ([]byte, error) {
	logger := logging.OrNop(c.Logger)
	logger.Debugw("Running yt-dlp", "args", cmd.BuildCommand(ctx, url).Args)

	start := time.Now()
	res, err := cmd.Run(ctx, url)
	logger.Debugw("yt-dlp finished", "elapsed", time.Since(start).String())
	if err != nil {
		if res != nil {
			if msg := strings.TrimSpace(res.Stderr); msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
		}
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return []byte(res.Stdout), nil
}

// ListChannel dumps the newest entries of a channel or playlist URL.
// limit <= 0 lists everything.
func (c *Client) ListChannel(
	ctx context.Context,
	channelURL string,
	limit int,
) ([]Entry, error) {
	out, err := c.run(ctx, c.listCommand(limit), channelURL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp failed to fetch the list: %w", err)
	}

	entries, err := ParseListing(out)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ParseListing decodes `--dump-single-json` output. A single video payload
// yields one entry; nested tab playlists are flattened.
func ParseListing(data []byte) ([]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse yt-dlp JSON output")
	}
	payload := gjson.ParseBytes(data)
	if !payload.IsObject() {
		return nil, fmt.Errorf("unexpected yt-dlp JSON output: not an object")
	}

	entries := payload.Get("entries")
	if payload.Get("_type").String() == "url" && payload.Get("url").String() != "" {
		return []Entry{entryFrom(payload)}, nil
	}
	if len(entries.Array()) == 0 && payload.Get("webpage_url").String() != "" &&
		payload.Get("_type").String() != "playlist" {
		return []Entry{entryFrom(payload)}, nil
	}

	var out []Entry
	collectEntries(entries, &out)
	return out, nil
}

func collectEntries(entries gjson.Result, out *[]Entry) {
	for _, e := range entries.Array() {
		if !e.IsObject() {
			continue
		}
		if nested := e.Get("entries"); nested.IsArray() {
			collectEntries(nested, out)
			continue
		}
		*out = append(*out, entryFrom(e))
	}
}

func entryFrom(r gjson.Result) Entry {
	u := r.Get("webpage_url").String()
	if u == "" {
		u = r.Get("url").String()
	}
	return Entry{
		ID:         r.Get("id").String(),
		Title:      r.Get("title").String(),
		URL:        u,
		Duration:   r.Get("duration").Float(),
		UploadDate: r.Get("upload_date").String(),
		ViewCount:  r.Get("view_count").Int(),
	}
}

// DownloadSubtitles writes the manual and automatic subtitle tracks of one
// video into opts.SubtitleDir.
func (c *Client) DownloadSubtitles(
	ctx context.Context,
	url string,
	opts DownloadOptions,
) error {
	if opts.SubtitleDir == "" {
		return fmt.Errorf("subtitle directory is required")
	}
	if err := os.MkdirAll(opts.SubtitleDir, 0755); err != nil {
		return fmt.Errorf("failed to create subtitle directory: %w", err)
	}

	cmd, err := c.downloadCommand(opts)
	if err != nil {
		return fmt.Errorf("failed to resolve download paths: %w", err)
	}

	if _, err := c.run(ctx, cmd, url); err != nil {
		return fmt.Errorf("yt-dlp download failed for %s: %w", url, err)
	}
	return nil
}

var handlePattern = regexp.MustCompile(`@([^/?#]+)`)

// ExtractHandle returns the @handle of a channel URL, or "".
func ExtractHandle(channelURL string) string {
	m := handlePattern.FindStringSubmatch(channelURL)
	if m == nil {
		return ""
	}
	return m[1]
}
