//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/studiokit/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "studiokit.sqlite3"
const errDBClientNil = "db client is nil"

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type RenderJob struct {
	ID              string `gorm:"primaryKey;type:varchar(36)"`
	TrackID         string `gorm:"index:idx_job_track"`
	SongName        string
	Artist          string
	Status          string `gorm:"index:idx_job_status"`
	Error           string
	OutputPath      string
	SegmentCount    int
	BoundCount      int
	DurationSeconds float64
	SizeBytes       int64
	CreatedAt       time.Time `gorm:"index:idx_job_created"`
	UpdatedAt       time.Time
}

type Extraction struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	FileName  string
	Method    string `gorm:"index:idx_extraction_method"`
	Language  string
	Pages     int
	Chars     int
	CreatedAt time.Time `gorm:"index:idx_extraction_created"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("STUDIO_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// one writer; render workers and HTTP handlers share the handle
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RenderJob{}, &Extraction{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) ready() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return nil
}

// SaveJob inserts or updates a job row keyed by ID.
func (c *DBClient) SaveJob(job models.RenderJob) error {
	if err := c.ready(); err != nil {
		return err
	}
	if job.ID == "" {
		return fmt.Errorf("saving job: empty id: %w", models.ErrInvalidInput)
	}
	row := jobRow(job)
	if err := c.DB.Save(&row).Error; err != nil {
		return fmt.Errorf("saving job %s: %w", job.ID, err)
	}
	return nil
}

func (c *DBClient) GetJob(id string) (*models.RenderJob, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var row RenderJob
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("querying job %s: %w", id, err)
	}
	job := row.model()
	return &job, nil
}

// ListJobs returns jobs newest first. limit <= 0 means no limit.
func (c *DBClient) ListJobs(limit int) ([]models.RenderJob, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []RenderJob
	q := c.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	out := make([]models.RenderJob, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (c *DBClient) DeleteJob(id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	res := c.DB.Where("id = ?", id).Delete(&RenderJob{})
	if res.Error != nil {
		return fmt.Errorf("deleting job %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// FailRunningJobs marks jobs left queued or running by a previous process as
// failed. It returns how many rows changed.
func (c *DBClient) FailRunningJobs(reason string) (int64, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	res := c.DB.Model(&RenderJob{}).
		Where("status IN ?", []string{string(models.JobQueued), string(models.JobRunning)}).
		Updates(map[string]any{"status": string(models.JobFailed), "error": reason})
	if res.Error != nil {
		return 0, fmt.Errorf("failing stale jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (c *DBClient) RecordExtraction(e models.Extraction) error {
	if err := c.ready(); err != nil {
		return err
	}
	row := Extraction{
		ID:        e.ID,
		FileName:  e.FileName,
		Method:    e.Method,
		Language:  e.Language,
		Pages:     e.Pages,
		Chars:     e.Chars,
		CreatedAt: e.CreatedAt,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("recording extraction: %w", err)
	}
	return nil
}

func (c *DBClient) ListExtractions(limit int) ([]models.Extraction, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Extraction
	q := c.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	out := make([]models.Extraction, len(rows))
	for i, r := range rows {
		out[i] = models.Extraction{
			ID:        r.ID,
			FileName:  r.FileName,
			Method:    r.Method,
			Language:  r.Language,
			Pages:     r.Pages,
			Chars:     r.Chars,
			CreatedAt: r.CreatedAt,
		}
	}
	return out, nil
}

// Counts returns the number of stored jobs and extractions.
func (c *DBClient) Counts() (jobs, extractions int64, err error) {
	if err := c.ready(); err != nil {
		return 0, 0, err
	}
	if err := c.DB.Model(&RenderJob{}).Count(&jobs).Error; err != nil {
		return 0, 0, err
	}
	if err := c.DB.Model(&Extraction{}).Count(&extractions).Error; err != nil {
		return 0, 0, err
	}
	return jobs, extractions, nil
}

func jobRow(j models.RenderJob) RenderJob {
	return RenderJob{
		ID:              j.ID,
		TrackID:         j.TrackID,
		SongName:        j.SongName,
		Artist:          j.Artist,
		Status:          string(j.Status),
		Error:           j.Error,
		OutputPath:      j.OutputPath,
		SegmentCount:    j.SegmentCount,
		BoundCount:      j.BoundCount,
		DurationSeconds: j.DurationSeconds,
		SizeBytes:       j.SizeBytes,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

func (r RenderJob) model() models.RenderJob {
	return models.RenderJob{
		ID:              r.ID,
		TrackID:         r.TrackID,
		SongName:        r.SongName,
		Artist:          r.Artist,
		Status:          models.JobStatus(r.Status),
		Error:           r.Error,
		OutputPath:      r.OutputPath,
		SegmentCount:    r.SegmentCount,
		BoundCount:      r.BoundCount,
		DurationSeconds: r.DurationSeconds,
		SizeBytes:       r.SizeBytes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
