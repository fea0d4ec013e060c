package studio

import (
	"time"

	"github.com/himanishpuri/studiokit/pkg/studio/assets"
	"github.com/himanishpuri/studiokit/pkg/studio/cache"
	"github.com/himanishpuri/studiokit/pkg/studio/video"
)

type Config struct {
	DBPath    string
	TempDir   string
	OutputDir string

	MetadataURL     string
	MetadataHeaders map[string]string
	LyricsURL       string
	GiphyKey        string
	GiphyLimit      int
	UserAgent       string

	MinSegmentSeconds float64

	Video     video.Config
	CacheTTL  time.Duration
	QueueSize int

	Logger       Logger
	Storage      Storage
	Metadata     MetadataSource
	Lyrics       LyricsSource
	Searcher     assets.Searcher
	AssetCache   cache.Store
	Renderer     Renderer
	AudioFetcher AudioFetcher
	PDF          PDFExtractor
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

// WithOutputDir sets where finished videos are written.
func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithMetadataAPI points the metadata client at baseURL. headers are sent
// with every request (for example X-RapidAPI-Key / X-RapidAPI-Host).
func WithMetadataAPI(baseURL string, headers map[string]string) Option {
	return func(c *Config) {
		c.MetadataURL = baseURL
		c.MetadataHeaders = headers
	}
}

func WithLyricsURL(baseURL string) Option {
	return func(c *Config) {
		c.LyricsURL = baseURL
	}
}

// WithGiphyKey sets the default asset-search key used when a request does
// not carry its own.
func WithGiphyKey(key string) Option {
	return func(c *Config) {
		c.GiphyKey = key
	}
}

// WithGiphyLimit sets how many results each asset search requests.
func WithGiphyLimit(n int) Option {
	return func(c *Config) {
		c.GiphyLimit = n
	}
}

// WithUserAgent sets the User-Agent sent to the metadata and lyrics APIs.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithMinSegmentSeconds sets the floor for clamped segment durations.
func WithMinSegmentSeconds(d float64) Option {
	return func(c *Config) {
		c.MinSegmentSeconds = d
	}
}

func WithVideoConfig(vc video.Config) Option {
	return func(c *Config) {
		c.Video = vc
	}
}

// WithAssetCache memoizes asset searches in store for ttl.
func WithAssetCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Config) {
		c.AssetCache = store
		c.CacheTTL = ttl
	}
}

func WithMetadataSource(m MetadataSource) Option {
	return func(c *Config) {
		c.Metadata = m
	}
}

func WithLyricsSource(l LyricsSource) Option {
	return func(c *Config) {
		c.Lyrics = l
	}
}

// WithSearcher replaces the Giphy searcher for every request.
func WithSearcher(s assets.Searcher) Option {
	return func(c *Config) {
		c.Searcher = s
	}
}

func WithRenderer(r Renderer) Option {
	return func(c *Config) {
		c.Renderer = r
	}
}

func WithAudioFetcher(f AudioFetcher) Option {
	return func(c *Config) {
		c.AudioFetcher = f
	}
}

func WithPDFExtractor(x PDFExtractor) Option {
	return func(c *Config) {
		c.PDF = x
	}
}

// WithQueueSize bounds how many submitted renders may wait.
func WithQueueSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.QueueSize = n
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:    "studiokit.sqlite3",
		TempDir:   "/tmp",
		OutputDir: "videos",
		Video:     video.DefaultConfig(),
		CacheTTL:  24 * time.Hour,
		QueueSize: 16,
	}
}
