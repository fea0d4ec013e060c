package studio

import (
	"fmt"
	"strings"
	"time"
)

// VideoRequest asks for one lyrics video.
type VideoRequest struct {
	TrackURL    string
	GiphyAPIKey string // overrides the configured key for this request
	WithAudio   bool
	Output      string // optional; defaults to <OutputDir>/<job id>.mp4
}

func (r VideoRequest) Validate() error {
	if strings.TrimSpace(r.TrackURL) == "" {
		return fmt.Errorf("track_url is required")
	}
	return nil
}

type Stage string

const (
	StageQueued   Stage = "queued"
	StageMetadata Stage = "metadata"
	StageLyrics   Stage = "lyrics"
	StageTimeline Stage = "timeline"
	StageAssets   Stage = "assets"
	StageAudio    Stage = "audio"
	StageRender   Stage = "render"
	StageDone     Stage = "done"
	StageFailed   Stage = "failed"
)

// Event is one progress report for a render job.
type Event struct {
	JobID   string    `json:"job_id"`
	Stage   Stage     `json:"stage"`
	Index   int       `json:"index,omitempty"`
	Total   int       `json:"total,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Terminal reports whether no further events follow for the job.
func (e Event) Terminal() bool {
	return e.Stage == StageDone || e.Stage == StageFailed
}

type ProgressFunc func(Event)

// Stats summarizes stored state for the metrics endpoint.
type Stats struct {
	Jobs        int64         `json:"jobs"`
	Extractions int64         `json:"extractions"`
	Queued      int           `json:"queued"`
	Uptime      time.Duration `json:"uptime_ns"`
}
