package tracker

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subtext/internal/subtitle"
)

// Set holds identifiers that have already been processed.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s Set) Add(id string) {
	s[id] = struct{}{}
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// FilterNew returns the candidates missing from known, in their original
// order. known is not modified.
func FilterNew(known Set, candidates []string) []string {
	fresh := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if known.Has(c) {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh
}

// PendingByID returns the URLs whose video id is missing from known, one
// URL per id in first-seen order. URLs without a recognizable id are
// returned separately as unidentified: they can never be matched against
// downloaded files, so they are not queued.
func PendingByID(known Set, urls []string) (pending, unidentified []string) {
	ids := make([]string, 0, len(urls))
	byID := make(map[string]string, len(urls))
	for _, u := range urls {
		id := VideoID(u)
		if id == "" {
			unidentified = append(unidentified, u)
			continue
		}
		if _, dup := byID[id]; dup {
			continue
		}
		byID[id] = u
		ids = append(ids, id)
	}

	fresh := FilterNew(known, ids)
	pending = make([]string, 0, len(fresh))
	for _, id := range fresh {
		pending = append(pending, byID[id])
	}
	return pending, unidentified
}

// VideoID extracts the YouTube video id from a watch, short link or shorts
// URL. Returns "" when the URL carries none.
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	if v := u.Query().Get("v"); v != "" {
		return v
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch {
	case host == "youtu.be" && len(segments) > 0:
		return segments[0]
	case len(segments) == 2 && (segments[0] == "shorts" || segments[0] == "live"):
		return segments[1]
	}
	return ""
}

// IDFromFilename returns the id yt-dlp embeds in its default output name,
// e.g. "Title [abc123].en.srt" -> "abc123".
func IDFromFilename(name string) string {
	name = filepath.Base(name)
	end := strings.LastIndex(name, "]")
	if end < 0 {
		return ""
	}
	start := strings.LastIndex(name[:end], "[")
	if start < 0 {
		return ""
	}
	return name[start+1 : end]
}

// ScanDir collects the ids of captions files already present in dir.
// A missing directory is an empty set.
func ScanDir(dir string) (Set, error) {
	files, err := subtitle.ListFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSet(), nil
		}
		return nil, err
	}

	known := NewSet()
	for _, f := range files {
		if id := IDFromFilename(f); id != "" {
			known.Add(id)
		}
	}
	return known, nil
}
