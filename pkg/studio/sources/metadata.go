package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/himanishpuri/studiokit/pkg/models"
)

// MetadataClient resolves a track ID to SongInfo against a JSON endpoint of
// the form GET {baseURL}/tracks/{id}.
type MetadataClient struct {
	baseURL string
	cfg     clientConfig
}

type trackResponse struct {
	ID        string `json:"id"`
	SongName  string `json:"song_name"`
	Artist    string `json:"artist"`
	AlbumName string `json:"album_name"`
	Duration  string `json:"duration"`
	Released  string `json:"released"`
	Image     string `json:"image"`
}

func NewMetadataClient(baseURL string, opts ...Option) *MetadataClient {
	return &MetadataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cfg:     newClientConfig(opts),
	}
}

// Song fetches metadata for trackID. Fields are passed through unvalidated.
func (c *MetadataClient) Song(ctx context.Context, trackID string) (models.SongInfo, error) {
	if strings.TrimSpace(trackID) == "" {
		return models.SongInfo{}, fmt.Errorf("metadata: empty track id: %w", models.ErrInvalidInput)
	}
	if c.baseURL == "" {
		return models.SongInfo{}, fmt.Errorf("metadata: no API base URL configured: %w", models.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(trackID))

	var tr trackResponse
	if err := c.cfg.getJSON(ctx, endpoint, false, &tr); err != nil {
		return models.SongInfo{}, fmt.Errorf("metadata for %s: %w", trackID, err)
	}
	if tr.SongName == "" && tr.Artist == "" {
		return models.SongInfo{}, fmt.Errorf("metadata for %s: no song in response: %w", trackID, models.ErrNotFound)
	}

	id := tr.ID
	if id == "" {
		id = trackID
	}
	return models.SongInfo{
		TrackID:   id,
		SongName:  tr.SongName,
		Artist:    tr.Artist,
		AlbumName: tr.AlbumName,
		Duration:  tr.Duration,
		Released:  tr.Released,
		ImageURL:  tr.Image,
	}, nil
}
