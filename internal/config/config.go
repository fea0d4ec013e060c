// Package config loads studiokit settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/studiokit/pkg/studio"
	"github.com/himanishpuri/studiokit/pkg/studio/timeline"
	"github.com/himanishpuri/studiokit/pkg/studio/video"
)

const DefaultPath = "studiokit.yaml"

type Config struct {
	LogLevel string `yaml:"log_level"`

	DBPath    string `yaml:"db_path"`
	TempDir   string `yaml:"temp_dir"`
	OutputDir string `yaml:"output_dir"`

	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		MaxUploadMB    int64    `yaml:"max_upload_mb"`
	} `yaml:"server"`

	Metadata struct {
		URL     string `yaml:"url"`
		APIKey  string `yaml:"api_key"`
		APIHost string `yaml:"api_host"`
	} `yaml:"metadata"`

	LyricsURL   string `yaml:"lyrics_url"`
	UserAgent   string `yaml:"user_agent"`
	GiphyAPIKey string `yaml:"giphy_api_key"`
	GiphyLimit  int    `yaml:"giphy_limit"`

	Timeline struct {
		MinSegmentSeconds float64 `yaml:"min_segment_seconds"`
	} `yaml:"timeline"`

	Cache struct {
		RedisURL string `yaml:"redis_url"`
		TTL      string `yaml:"ttl"`
	} `yaml:"cache"`

	Video struct {
		Width    int    `yaml:"width"`
		Height   int    `yaml:"height"`
		FPS      int    `yaml:"fps"`
		FontFile string `yaml:"font_file"`
		FontSize int    `yaml:"font_size"`
		FFmpeg   string `yaml:"ffmpeg"`
		FFprobe  string `yaml:"ffprobe"`
	} `yaml:"video"`

	PDF struct {
		Pdftoppm string `yaml:"pdftoppm"`
		DPI      int    `yaml:"dpi"`
	} `yaml:"pdf"`

	path string
}

func defaultConfig() *Config {
	c := &Config{}

	c.LogLevel = "INFO"
	c.DBPath = "studiokit.sqlite3"
	c.TempDir = os.TempDir()
	c.OutputDir = "videos"

	c.Server.Port = 8080
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.MaxUploadMB = 100

	c.LyricsURL = "https://lrclib.net/api"
	c.GiphyLimit = 1
	c.Timeline.MinSegmentSeconds = timeline.MinSegmentDuration
	c.Cache.TTL = "24h"

	vc := video.DefaultConfig()
	c.Video.Width = vc.Width
	c.Video.Height = vc.Height
	c.Video.FPS = vc.FPS
	c.Video.FontSize = vc.FontSize
	c.Video.FFmpeg = vc.FFmpeg
	c.Video.FFprobe = vc.FFprobe

	c.PDF.Pdftoppm = "pdftoppm"
	c.PDF.DPI = 300

	return c
}

// Load reads path (DefaultPath when empty) over the defaults, then applies
// .env and environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	// .env is optional
	_ = godotenv.Load()

	cfg := defaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.slashPaths()
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// slashPaths normalizes Windows separators in the filesystem fields only.
func (c *Config) slashPaths() {
	for _, p := range []*string{&c.DBPath, &c.TempDir, &c.OutputDir, &c.Video.FontFile} {
		*p = strings.ReplaceAll(*p, `\`, "/")
	}
}

// Path is the file the configuration was loaded from (it may not exist).
func (c *Config) Path() string { return c.path }

func (c *Config) applyEnv() {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	str(&c.LogLevel, "LOG_LEVEL")
	str(&c.DBPath, "STUDIO_DB_PATH")
	str(&c.TempDir, "STUDIO_TEMP_DIR")
	str(&c.OutputDir, "STUDIO_OUTPUT_DIR")
	str(&c.Metadata.URL, "STUDIO_METADATA_URL", "METADATA_API_URL")
	str(&c.Metadata.APIKey, "RAPIDAPI_KEY")
	str(&c.Metadata.APIHost, "RAPIDAPI_HOST")
	str(&c.LyricsURL, "STUDIO_LYRICS_URL")
	str(&c.GiphyAPIKey, "GIPHY_API_KEY")
	str(&c.UserAgent, "STUDIO_USER_AGENT")
	str(&c.Cache.RedisURL, "REDIS_URL")
	str(&c.Video.FontFile, "STUDIO_FONT_FILE")

	if v := os.Getenv("STUDIO_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("STUDIO_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = SplitList(v)
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.GiphyLimit < 0 {
		return fmt.Errorf("invalid giphy limit %d", c.GiphyLimit)
	}
	if c.Timeline.MinSegmentSeconds < 0 {
		return fmt.Errorf("invalid min segment seconds %v", c.Timeline.MinSegmentSeconds)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses the cache TTL. Empty means no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if strings.TrimSpace(c.Cache.TTL) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
	}
	return d, nil
}

// VideoConfig converts the video section for the compositor.
func (c *Config) VideoConfig() video.Config {
	return video.Config{
		Width:    c.Video.Width,
		Height:   c.Video.Height,
		FPS:      c.Video.FPS,
		FontFile: c.Video.FontFile,
		FontSize: c.Video.FontSize,
		FFmpeg:   c.Video.FFmpeg,
		FFprobe:  c.Video.FFprobe,
		TempDir:  c.TempDir,
	}
}

// MetadataHeaders returns the RapidAPI-style headers, if configured.
func (c *Config) MetadataHeaders() map[string]string {
	h := map[string]string{}
	if c.Metadata.APIKey != "" {
		h["X-RapidAPI-Key"] = c.Metadata.APIKey
	}
	if c.Metadata.APIHost != "" {
		h["X-RapidAPI-Host"] = c.Metadata.APIHost
	}
	return h
}

// ServiceOptions translates the configuration into studio options. Cache and
// PDF engine wiring is left to the caller since they hold resources.
func (c *Config) ServiceOptions() []studio.Option {
	return []studio.Option{
		studio.WithDBPath(c.DBPath),
		studio.WithTempDir(c.TempDir),
		studio.WithOutputDir(c.OutputDir),
		studio.WithMetadataAPI(c.Metadata.URL, c.MetadataHeaders()),
		studio.WithLyricsURL(c.LyricsURL),
		studio.WithGiphyKey(c.GiphyAPIKey),
		studio.WithGiphyLimit(c.GiphyLimit),
		studio.WithUserAgent(c.UserAgent),
		studio.WithMinSegmentSeconds(c.Timeline.MinSegmentSeconds),
		studio.WithVideoConfig(c.VideoConfig()),
	}
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
