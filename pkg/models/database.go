package models

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the job can no longer change state.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// RenderJob is one lyrics-video render as persisted by the storage layer.
type RenderJob struct {
	ID              string    // UUID
	TrackID         string    // extracted from the submitted URL
	SongName        string
	Artist          string
	Status          JobStatus
	Error           string
	OutputPath      string
	SegmentCount    int
	BoundCount      int // segments that received an asset
	DurationSeconds float64
	SizeBytes       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Extraction records one PDF text extraction.
type Extraction struct {
	ID        string
	FileName  string
	Method    string
	Language  string
	Pages     int
	Chars     int
	CreatedAt time.Time
}
