package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "subtext.yaml"

// settings shared by every command; flags override these
type Config struct {
	Proxy string `yaml:"proxy"`

	// directories
	CSVDir      string `yaml:"csv_dir"`
	SubtitleDir string `yaml:"subtitle_dir"`

	// fetching
	Limit    int      `yaml:"limit"`
	SubLangs []string `yaml:"sub_langs"`

	YtDlp struct {
		Path string `yaml:"path"`
	} `yaml:"yt_dlp"`

	FFmpeg struct {
		Path string `yaml:"path"`
	} `yaml:"ffmpeg"`

	Summarize struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"summarize"`

	path string
}

// built-in defaults, matching the directory layout of earlier releases
func Default() *Config {
	c := &Config{}
	c.CSVDir = "youtube_dump"
	c.SubtitleDir = "youtube_subtitles"
	c.Limit = 10
	c.Summarize.Provider = "heuristic"
	return c
}

// Load reads a YAML config on top of the defaults. A missing file is not an
// error unless the path was given explicitly.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.normalize()

	return cfg, nil
}

// file the config was loaded from, empty for defaults
func (c *Config) Path() string {
	return c.path
}

func (c *Config) normalize() {
	def := Default()

	c.Proxy = strings.TrimSpace(c.Proxy)
	if strings.TrimSpace(c.CSVDir) == "" {
		c.CSVDir = def.CSVDir
	}
	if strings.TrimSpace(c.SubtitleDir) == "" {
		c.SubtitleDir = def.SubtitleDir
	}
	c.CSVDir = filepath.Clean(slashPath(c.CSVDir))
	c.SubtitleDir = filepath.Clean(slashPath(c.SubtitleDir))

	if c.Limit <= 0 {
		c.Limit = def.Limit
	}

	langs := c.SubLangs[:0]
	for _, l := range c.SubLangs {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	c.SubLangs = langs

	c.YtDlp.Path = slashPath(c.YtDlp.Path)
	c.FFmpeg.Path = slashPath(c.FFmpeg.Path)

	c.Summarize.Provider = strings.ToLower(strings.TrimSpace(c.Summarize.Provider))
	if c.Summarize.Provider == "" {
		c.Summarize.Provider = def.Summarize.Provider
	}
	c.Summarize.Model = strings.TrimSpace(c.Summarize.Model)
}

// windows paths written with backslashes
func slashPath(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
}
