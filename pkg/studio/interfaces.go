package studio

import (
	"context"

	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext"
	"github.com/himanishpuri/studiokit/pkg/studio/sources"
	"github.com/himanishpuri/studiokit/pkg/studio/video"
)

type Service interface {
	// BuildTimeline fetches metadata and lyrics for a track and compiles
	// its segment timeline without rendering anything.
	BuildTimeline(ctx context.Context, trackURL string) (*models.Timeline, error)
	// GenerateVideo runs a full render synchronously.
	GenerateVideo(ctx context.Context, req VideoRequest, hook ProgressFunc) (*models.RenderJob, error)
	// SubmitVideo queues a render and returns the queued job.
	SubmitVideo(req VideoRequest) (*models.RenderJob, error)
	GetJob(id string) (*models.RenderJob, error)
	ListJobs(limit int) ([]models.RenderJob, error)
	// DeleteJob removes a finished job and its rendered file.
	DeleteJob(id string) error
	// Subscribe streams progress events of a job until it finishes or
	// cancel is called.
	Subscribe(jobID string) (events <-chan Event, cancel func())

	ExtractPDF(ctx context.Context, path, fileName string, opts pdftext.Options, hook pdftext.PageProgress) (*pdftext.Result, error)
	PreviewPDF(ctx context.Context, path string) ([]byte, error)
	ListExtractions(limit int) ([]models.Extraction, error)

	Stats() (Stats, error)
	Close() error
}

type Storage interface {
	SaveJob(job models.RenderJob) error
	GetJob(id string) (*models.RenderJob, error)
	ListJobs(limit int) ([]models.RenderJob, error)
	DeleteJob(id string) error
	FailRunningJobs(reason string) (int64, error)
	RecordExtraction(e models.Extraction) error
	ListExtractions(limit int) ([]models.Extraction, error)
	Counts() (jobs, extractions int64, err error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

type MetadataSource interface {
	Song(ctx context.Context, trackID string) (models.SongInfo, error)
}

type LyricsSource interface {
	Lyrics(ctx context.Context, q sources.LyricsQuery) (models.Lyrics, error)
}

type Renderer interface {
	Render(ctx context.Context, req video.RenderRequest, hook video.ProgressFunc) (*video.Metadata, error)
}

// AudioFetcher downloads a track's audio into dir and returns the file path.
type AudioFetcher func(ctx context.Context, artist, song, dir string) (string, error)

type PDFExtractor interface {
	Extract(ctx context.Context, path string, opts pdftext.Options, hook pdftext.PageProgress) (*pdftext.Result, error)
	Preview(ctx context.Context, path string, maxWidth int) ([]byte, error)
}
