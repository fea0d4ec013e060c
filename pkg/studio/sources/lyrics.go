package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/himanishpuri/studiokit/pkg/models"
)

const DefaultLyricsURL = "https://lrclib.net/api"

// LyricsClient queries an LRCLIB-compatible lyrics API.
type LyricsClient struct {
	baseURL string
	cfg     clientConfig
}

// LyricsQuery identifies a track. Album and DurationSeconds narrow the match
// and are omitted when zero.
type LyricsQuery struct {
	Artist          string
	Track           string
	Album           string
	DurationSeconds int
}

type lrclibResponse struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

func NewLyricsClient(baseURL string, opts ...Option) *LyricsClient {
	if baseURL == "" {
		baseURL = DefaultLyricsURL
	}
	return &LyricsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cfg:     newClientConfig(opts),
	}
}

// Lyrics fetches lyrics for q. Any non-success status, an empty body or a
// response with neither synced nor plain text wraps models.ErrNotFound.
func (c *LyricsClient) Lyrics(ctx context.Context, q LyricsQuery) (models.Lyrics, error) {
	if strings.TrimSpace(q.Artist) == "" || strings.TrimSpace(q.Track) == "" {
		return models.Lyrics{}, fmt.Errorf("lyrics: artist and track required: %w", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("artist_name", q.Artist)
	params.Set("track_name", q.Track)
	if q.Album != "" {
		params.Set("album_name", q.Album)
	}
	if q.DurationSeconds > 0 {
		params.Set("duration", strconv.Itoa(q.DurationSeconds))
	}

	var lr lrclibResponse
	if err := c.cfg.getJSON(ctx, c.baseURL+"/get?"+params.Encode(), true, &lr); err != nil {
		return models.Lyrics{}, fmt.Errorf("lyrics for %s - %s: %w", q.Artist, q.Track, err)
	}

	out := models.Lyrics{
		Synced:       lr.SyncedLyrics,
		Plain:        lr.PlainLyrics,
		Instrumental: lr.Instrumental,
	}
	if strings.TrimSpace(out.Synced) == "" && strings.TrimSpace(out.Plain) == "" {
		return out, fmt.Errorf("lyrics for %s - %s: empty: %w", q.Artist, q.Track, models.ErrNotFound)
	}
	return out, nil
}
