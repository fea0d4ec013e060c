package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext"
	"github.com/himanishpuri/studiokit/pkg/studio/timeline"
)

// TimelineRequest is the request body for POST /api/timeline
type TimelineRequest struct {
	TrackURL string `json:"track_url"`
}

func (r *TimelineRequest) Validate() error {
	if r.TrackURL == "" {
		return fmt.Errorf("track_url is required")
	}
	return nil
}

// SegmentDTO is one timeline segment with its asset-search phrase.
type SegmentDTO struct {
	Index        int     `json:"index"`
	Timestamp    string  `json:"timestamp"`
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	Duration     float64 `json:"duration_seconds"`
	SearchPhrase string  `json:"search_phrase,omitempty"`
}

// TimelineResponse is the response for POST /api/timeline
type TimelineResponse struct {
	Song             models.SongInfo `json:"song"`
	Segments         []SegmentDTO    `json:"segments"`
	Count            int             `json:"count"`
	TotalDuration    float64         `json:"total_duration_seconds"`
	DurationFallback bool            `json:"duration_fallback"`
	SkippedLines     int             `json:"skipped_lines"`
}

func newTimelineResponse(tl *models.Timeline) TimelineResponse {
	segs := make([]SegmentDTO, len(tl.Segments))
	for i, s := range tl.Segments {
		segs[i] = SegmentDTO{
			Index:        i,
			Timestamp:    timeline.FormatTimestamp(s.StartSeconds),
			Text:         s.Text,
			StartSeconds: s.StartSeconds,
			Duration:     s.DurationSeconds,
			SearchPhrase: timeline.SearchPhrase(s.Text),
		}
	}
	return TimelineResponse{
		Song:             tl.Song,
		Segments:         segs,
		Count:            len(segs),
		TotalDuration:    tl.TotalDurationSeconds,
		DurationFallback: tl.DurationFallback,
		SkippedLines:     tl.SkippedLines,
	}
}

// CreateVideoRequest is the request body for POST /api/videos
type CreateVideoRequest struct {
	TrackURL    string `json:"track_url"`
	GiphyAPIKey string `json:"giphy_api_key,omitempty"`
	WithAudio   bool   `json:"with_audio,omitempty"`
}

func (r *CreateVideoRequest) Validate() error {
	if r.TrackURL == "" {
		return fmt.Errorf("track_url is required")
	}
	return nil
}

func (r *CreateVideoRequest) toStudio() studio.VideoRequest {
	return studio.VideoRequest{
		TrackURL:    r.TrackURL,
		GiphyAPIKey: r.GiphyAPIKey,
		WithAudio:   r.WithAudio,
	}
}

// JobDTO represents a render job in API responses
type JobDTO struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	TrackID         string    `json:"track_id,omitempty"`
	SongName        string    `json:"song_name,omitempty"`
	Artist          string    `json:"artist,omitempty"`
	Error           string    `json:"error,omitempty"`
	Segments        int       `json:"segments"`
	BoundSegments   int       `json:"bound_segments"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Size            string    `json:"size,omitempty"`
	FileURL         string    `json:"file_url,omitempty"`
	EventsURL       string    `json:"events_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newJobDTO(j models.RenderJob) JobDTO {
	dto := JobDTO{
		ID:              j.ID,
		Status:          string(j.Status),
		TrackID:         j.TrackID,
		SongName:        j.SongName,
		Artist:          j.Artist,
		Error:           j.Error,
		Segments:        j.SegmentCount,
		BoundSegments:   j.BoundCount,
		DurationSeconds: j.DurationSeconds,
		EventsURL:       "/api/videos/" + j.ID + "/events",
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
	if j.Status == models.JobSucceeded {
		dto.FileURL = "/api/videos/" + j.ID + "/file"
		dto.Size = humanize.Bytes(uint64(j.SizeBytes))
	}
	return dto
}

// ListJobsResponse is the response for GET /api/videos
type ListJobsResponse struct {
	Jobs  []JobDTO `json:"jobs"`
	Count int      `json:"count"`
}

// ExtractResponse is the response for POST /api/pdf/extract
type ExtractResponse struct {
	FileName string         `json:"file_name"`
	Method   pdftext.Method `json:"method"`
	Language string         `json:"language"`
	Pages    int            `json:"pages"`
	Chars    int            `json:"chars"`
	Size     string         `json:"size"`
	Text     string         `json:"text"`
	Warning  string         `json:"warning,omitempty"`
}

// ExtractionDTO is one recorded extraction
type ExtractionDTO struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Method    string    `json:"method"`
	Language  string    `json:"language"`
	Pages     int       `json:"pages"`
	Chars     int       `json:"chars"`
	CreatedAt time.Time `json:"created_at"`
	Age       string    `json:"age"`
}

// ListExtractionsResponse is the response for GET /api/pdf/extractions
type ListExtractionsResponse struct {
	Extractions []ExtractionDTO `json:"extractions"`
	Count       int             `json:"count"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	JobCount     int64  `json:"job_count"`
	Extractions  int64  `json:"extraction_count"`
	QueuedJobs   int    `json:"queued_jobs"`
	Uptime       string `json:"uptime"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
