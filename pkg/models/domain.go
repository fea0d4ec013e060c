package models

// LyricLine is one timestamped line of a synced-lyrics payload.
// An empty Text marks a silent interval (or the synthetic end-of-track line).
type LyricLine struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Text             string  `json:"text"`
}

// Segment is one compiled timeline unit.
type Segment struct {
	Text            string  `json:"text"`
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// EndSeconds is the exclusive end of the segment.
func (s Segment) EndSeconds() float64 {
	return s.StartSeconds + s.DurationSeconds
}

// BoundSegment is a Segment with the illustrative asset the resolver found
// for it. AssetURL is empty when no asset was bound.
type BoundSegment struct {
	Segment
	SearchPhrase string `json:"search_phrase,omitempty"`
	AssetURL     string `json:"asset_url,omitempty"`
}

// Bound reports whether an asset is attached.
func (b BoundSegment) Bound() bool { return b.AssetURL != "" }

// SongInfo is the track metadata returned by the metadata collaborator.
// Fields are passed through as received; none are validated.
type SongInfo struct {
	TrackID   string `json:"track_id"`
	SongName  string `json:"song_name"`
	Artist    string `json:"artist"`
	AlbumName string `json:"album_name"`
	Duration  string `json:"duration"` // "3m 45s"
	Released  string `json:"released"`
	ImageURL  string `json:"image_url"`
}

// Lyrics is the lyrics collaborator's answer for one track.
type Lyrics struct {
	Synced       string `json:"synced,omitempty"`
	Plain        string `json:"plain,omitempty"`
	Instrumental bool   `json:"instrumental,omitempty"`
}

// Timeline is a compiled timeline together with how its length was decided.
type Timeline struct {
	Song                 SongInfo  `json:"song"`
	Segments             []Segment `json:"segments"`
	TotalDurationSeconds float64   `json:"total_duration_seconds"`
	DurationFallback     bool      `json:"duration_fallback"`
	SkippedLines         int       `json:"skipped_lines"`
}
