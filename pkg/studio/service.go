package studio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/himanishpuri/studiokit/pkg/logger"
	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio/assets"
	"github.com/himanishpuri/studiokit/pkg/studio/cache"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext"
	"github.com/himanishpuri/studiokit/pkg/studio/sources"
	"github.com/himanishpuri/studiokit/pkg/studio/timeline"
	"github.com/himanishpuri/studiokit/pkg/studio/video"
	"github.com/himanishpuri/studiokit/pkg/utils"
)

// ErrQueueFull is returned by SubmitVideo when the render queue is saturated.
var ErrQueueFull = errors.New("render queue is full")

// ErrClosed is returned by SubmitVideo once the service has been closed.
var ErrClosed = errors.New("service is closed")

// studioService is the default implementation of the Service interface.
type studioService struct {
	storage  Storage
	log      Logger
	config   *Config
	metadata MetadataSource
	lyrics   LyricsSource
	renderer Renderer
	audio    AudioFetcher
	pdf      PDFExtractor
	events   *broker

	queue   chan queuedJob
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started time.Time
	once    sync.Once
}

type queuedJob struct {
	job models.RenderJob
	req VideoRequest
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	if n, err := stor.FailRunningJobs("interrupted by restart"); err != nil {
		cfg.Logger.Warnf("Could not reset stale jobs: %v", err)
	} else if n > 0 {
		cfg.Logger.Warnf("Marked %d interrupted jobs as failed", n)
	}

	meta := cfg.Metadata
	if meta == nil {
		mopts := []sources.Option{sources.WithUserAgent(cfg.UserAgent)}
		for k, v := range cfg.MetadataHeaders {
			mopts = append(mopts, sources.WithHeader(k, v))
		}
		meta = sources.NewMetadataClient(cfg.MetadataURL, mopts...)
	}
	lyr := cfg.Lyrics
	if lyr == nil {
		lyr = sources.NewLyricsClient(cfg.LyricsURL, sources.WithUserAgent(cfg.UserAgent))
	}
	renderer := cfg.Renderer
	if renderer == nil {
		vc := cfg.Video
		if vc.TempDir == "" {
			vc.TempDir = cfg.TempDir
		}
		renderer = video.NewCompositor(vc, video.WithLogger(componentLogger(cfg.Logger, "video")))
	}
	audio := cfg.AudioFetcher
	if audio == nil {
		audio = video.FetchAudio
	}
	pdf := cfg.PDF
	if pdf == nil {
		pdf = pdftext.NewExtractor(
			pdftext.WithTempDir(cfg.TempDir),
			pdftext.WithLogger(componentLogger(cfg.Logger, "pdf")),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &studioService{
		storage:  stor,
		log:      cfg.Logger,
		config:   cfg,
		metadata: meta,
		lyrics:   lyr,
		renderer: renderer,
		audio:    audio,
		pdf:      pdf,
		events:   newBroker(),
		queue:    make(chan queuedJob, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		started:  time.Now(),
	}

	s.wg.Add(1)
	go s.worker()

	return s, nil
}

// componentLogger derives a prefixed logger when the configured one is ours.
func componentLogger(l Logger, name string) Logger {
	if cl, ok := l.(*logger.Logger); ok {
		return cl.With(name)
	}
	return l
}

// worker renders submitted jobs one at a time.
func (s *studioService) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case qj := <-s.queue:
			job := qj.job
			if _, err := s.run(s.ctx, &job, qj.req, nil); err != nil {
				s.log.Errorf("Job %s failed: %v", job.ID, err)
			}
		}
	}
}

// BuildTimeline resolves a track to its compiled timeline.
func (s *studioService) BuildTimeline(ctx context.Context, trackURL string) (*models.Timeline, error) {
	return s.buildTimeline(ctx, trackURL, func(Event) {})
}

func (s *studioService) buildTimeline(ctx context.Context, trackURL string, emit ProgressFunc) (*models.Timeline, error) {
	trackID, err := utils.ExtractTrackID(trackURL)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrInvalidInput)
	}

	emit(Event{Stage: StageMetadata, Message: "Fetching song metadata"})
	song, err := s.metadata.Song(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("fetching metadata: %w", err)
	}
	s.log.Infof("Track %s: %s by %s (%s)", trackID, song.SongName, song.Artist, song.Duration)

	durSecs, _ := timeline.ParseDuration(song.Duration)

	emit(Event{Stage: StageLyrics, Message: "Fetching synced lyrics"})
	lyr, err := s.lyrics.Lyrics(ctx, sources.LyricsQuery{
		Artist:          song.Artist,
		Track:           song.SongName,
		Album:           song.AlbumName,
		DurationSeconds: durSecs,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching lyrics: %w", err)
	}

	parsed := timeline.ParseSyncedLyrics(lyr.Synced)
	if parsed.Skipped > 0 {
		s.log.Warnf("Skipped %d malformed lyric lines for %s", parsed.Skipped, song.SongName)
	}

	total, fallback := timeline.ResolveDuration(song.Duration, parsed.Lines)
	if fallback && len(parsed.Lines) > 0 {
		s.log.Warnf("Unparseable duration %q, using last lyric + %.0fs = %.2fs", song.Duration, timeline.FallbackTailSeconds, total)
	}

	segments, err := timeline.Compile(parsed.Lines, total,
		timeline.WithMinDuration(s.config.MinSegmentSeconds),
		timeline.WithProgress(func(i, n int, seg models.Segment) {
			emit(Event{Stage: StageTimeline, Index: i + 1, Total: n, Message: seg.Text})
		}))
	if err != nil {
		return nil, fmt.Errorf("compiling timeline for %s: %w", song.SongName, err)
	}

	return &models.Timeline{
		Song:                 song,
		Segments:             segments,
		TotalDurationSeconds: total,
		DurationFallback:     fallback,
		SkippedLines:         parsed.Skipped,
	}, nil
}

// searcherFor picks the asset searcher for one request.
func (s *studioService) searcherFor(req VideoRequest) assets.Searcher {
	var searcher assets.Searcher
	switch {
	case s.config.Searcher != nil:
		searcher = s.config.Searcher
	case req.GiphyAPIKey != "":
		searcher = assets.NewGiphy(req.GiphyAPIKey, assets.WithGiphyLimit(s.config.GiphyLimit))
	case s.config.GiphyKey != "":
		searcher = assets.NewGiphy(s.config.GiphyKey, assets.WithGiphyLimit(s.config.GiphyLimit))
	default:
		return nil
	}
	if s.config.AssetCache != nil {
		searcher = cache.NewSearcher(searcher, s.config.AssetCache, s.config.CacheTTL, componentLogger(s.log, "cache"))
	}
	return searcher
}

func (s *studioService) newJob() models.RenderJob {
	now := time.Now().UTC()
	return models.RenderJob{
		ID:        utils.NewID(),
		Status:    models.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenerateVideo renders synchronously, recording the job as it goes.
func (s *studioService) GenerateVideo(ctx context.Context, req VideoRequest, hook ProgressFunc) (*models.RenderJob, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrInvalidInput)
	}
	job := s.newJob()
	if err := s.storage.SaveJob(job); err != nil {
		return nil, fmt.Errorf("recording job: %w", err)
	}
	return s.run(ctx, &job, req, hook)
}

func (s *studioService) SubmitVideo(req VideoRequest) (*models.RenderJob, error) {
	if s.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrInvalidInput)
	}
	job := s.newJob()
	if id, err := utils.ExtractTrackID(req.TrackURL); err == nil {
		job.TrackID = id
	} else {
		return nil, fmt.Errorf("%v: %w", err, models.ErrInvalidInput)
	}
	if err := s.storage.SaveJob(job); err != nil {
		return nil, fmt.Errorf("recording job: %w", err)
	}

	s.events.publish(Event{JobID: job.ID, Stage: StageQueued, Time: time.Now()})

	select {
	case s.queue <- queuedJob{job: job, req: req}:
	default:
		job.Status = models.JobFailed
		job.Error = ErrQueueFull.Error()
		s.saveJob(&job)
		s.events.publish(Event{JobID: job.ID, Stage: StageFailed, Message: job.Error, Time: time.Now()})
		return nil, ErrQueueFull
	}

	s.log.Infof("Queued job %s for track %s", job.ID, job.TrackID)
	return &job, nil
}

func (s *studioService) saveJob(job *models.RenderJob) {
	job.UpdatedAt = time.Now().UTC()
	if err := s.storage.SaveJob(*job); err != nil {
		s.log.Errorf("Failed to save job %s: %v", job.ID, err)
	}
}

// run executes the pipeline for an already recorded job.
func (s *studioService) run(ctx context.Context, job *models.RenderJob, req VideoRequest, hook ProgressFunc) (*models.RenderJob, error) {
	emit := func(ev Event) {
		ev.JobID = job.ID
		ev.Time = time.Now()
		s.events.publish(ev)
		if hook != nil {
			hook(ev)
		}
	}
	fail := func(err error) (*models.RenderJob, error) {
		job.Status = models.JobFailed
		job.Error = err.Error()
		s.saveJob(job)
		emit(Event{Stage: StageFailed, Message: err.Error()})
		return job, err
	}

	job.Status = models.JobRunning
	s.saveJob(job)

	tl, err := s.buildTimeline(ctx, req.TrackURL, emit)
	if err != nil {
		return fail(err)
	}
	job.TrackID = tl.Song.TrackID
	job.SongName = tl.Song.SongName
	job.Artist = tl.Song.Artist
	job.SegmentCount = len(tl.Segments)
	s.saveJob(job)

	resolver := assets.NewResolver(s.searcherFor(req), componentLogger(s.log, "assets"))
	bound := resolver.Resolve(ctx, tl.Segments, func(i, n int, b models.BoundSegment) {
		emit(Event{Stage: StageAssets, Index: i + 1, Total: n, Message: b.SearchPhrase})
	})
	job.BoundCount = assets.BoundCount(bound)
	s.log.Infof("Bound %d/%d segments to assets", job.BoundCount, len(bound))

	ws, err := utils.NewWorkspace(s.config.TempDir, "studiokit-job-*")
	if err != nil {
		return fail(err)
	}
	defer ws.Cleanup()

	var audioPath string
	if req.WithAudio {
		emit(Event{Stage: StageAudio, Message: "Fetching audio track"})
		audioPath, err = s.audio(ctx, tl.Song.Artist, tl.Song.SongName, ws.Dir)
		if err != nil {
			if ctx.Err() != nil {
				return fail(ctx.Err())
			}
			s.log.Warnf("Audio unavailable, rendering silent video: %v", err)
			audioPath = ""
		}
	}

	output := req.Output
	if output == "" {
		output = filepath.Join(s.config.OutputDir, job.ID+".mp4")
	}

	meta, err := s.renderer.Render(ctx, video.RenderRequest{
		Segments:  bound,
		AudioPath: audioPath,
		Output:    output,
	}, func(i, n int, b models.BoundSegment) {
		emit(Event{Stage: StageRender, Index: i + 1, Total: n, Message: b.Text})
	})
	if err != nil {
		return fail(fmt.Errorf("rendering video: %w", err))
	}

	job.Status = models.JobSucceeded
	job.OutputPath = output
	job.SizeBytes = utils.FileSize(output)
	job.DurationSeconds = meta.DurationSec
	if job.DurationSeconds == 0 {
		job.DurationSeconds = timeline.TotalDuration(tl.Segments)
	}
	s.saveJob(job)
	emit(Event{Stage: StageDone, Message: output})

	s.log.Infof("Job %s finished: %s", job.ID, output)
	return job, nil
}

func (s *studioService) GetJob(id string) (*models.RenderJob, error) {
	return s.storage.GetJob(id)
}

func (s *studioService) ListJobs(limit int) ([]models.RenderJob, error) {
	return s.storage.ListJobs(limit)
}

// ErrJobActive is returned when deleting a job that has not finished.
var ErrJobActive = errors.New("job is still active")

func (s *studioService) DeleteJob(id string) error {
	job, err := s.storage.GetJob(id)
	if err != nil {
		return err
	}
	if !job.Status.Terminal() {
		return fmt.Errorf("job %s is %s: %w", id, job.Status, ErrJobActive)
	}
	if job.OutputPath != "" {
		if err := os.Remove(job.OutputPath); err != nil && !os.IsNotExist(err) {
			s.log.Warnf("Could not remove %s: %v", job.OutputPath, err)
		}
	}
	if err := s.storage.DeleteJob(id); err != nil {
		return err
	}
	s.events.forget(id)
	s.log.Infof("Deleted job %s", id)
	return nil
}

func (s *studioService) Subscribe(jobID string) (<-chan Event, func()) {
	return s.events.subscribe(jobID)
}

// ExtractPDF extracts text from the PDF at path and records the extraction.
func (s *studioService) ExtractPDF(ctx context.Context, path, fileName string, opts pdftext.Options, hook pdftext.PageProgress) (*pdftext.Result, error) {
	if fileName == "" {
		fileName = filepath.Base(path)
	}
	res, err := s.pdf.Extract(ctx, path, opts, hook)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", fileName, err)
	}

	rec := models.Extraction{
		ID:        utils.NewID(),
		FileName:  fileName,
		Method:    string(res.Method),
		Language:  res.Language,
		Pages:     res.Pages,
		Chars:     res.Chars,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.RecordExtraction(rec); err != nil {
		s.log.Warnf("Failed to record extraction of %s: %v", fileName, err)
	}
	return res, nil
}

func (s *studioService) PreviewPDF(ctx context.Context, path string) ([]byte, error) {
	return s.pdf.Preview(ctx, path, pdftext.PreviewMaxWidth)
}

func (s *studioService) ListExtractions(limit int) ([]models.Extraction, error) {
	return s.storage.ListExtractions(limit)
}

func (s *studioService) Stats() (Stats, error) {
	jobs, extractions, err := s.storage.Counts()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Jobs:        jobs,
		Extractions: extractions,
		Queued:      len(s.queue),
		Uptime:      time.Since(s.started),
	}, nil
}

// Close stops the render worker and releases storage.
func (s *studioService) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.events.closeAll()
		if s.config.AssetCache != nil {
			if cerr := s.config.AssetCache.Close(); cerr != nil {
				s.log.Warnf("Closing asset cache: %v", cerr)
			}
		}
		err = s.storage.Close()
	})
	return err
}
