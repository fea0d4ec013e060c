package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/studiokit/pkg/logger"
	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext"
	"github.com/himanishpuri/studiokit/pkg/utils"
)

const defaultMaxUpload = 100 << 20

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service studio.Service
	config  *ServerConfig
	log     studio.Logger
	page    []byte
	http    *http.Server
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	OutputDir      string
	MaxUploadBytes int64
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service studio.Service, config *ServerConfig) (*Server, error) {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaultMaxUpload
	}
	page, err := renderPage()
	if err != nil {
		return nil, err
	}
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger().With("server"),
		page:    page,
	}, nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps a service error onto an HTTP status.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.Errorf("Request failed: %v", err)
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, studio.ErrQueueFull), errors.Is(err, studio.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, studio.ErrJobActive):
		return http.StatusConflict
	}
	switch models.Classify(err) {
	case models.CodeInvalid:
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeFormat:
		return http.StatusUnprocessableEntity
	case models.CodeTransport:
		return http.StatusBadGateway
	case models.CodeCancel:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// handleRoot serves the web page at GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := s.service.Stats()
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		JobCount:     stats.Jobs,
		Extractions:  stats.Extractions,
		QueuedJobs:   stats.Queued,
		Uptime:       humanize.RelTime(time.Now().Add(-stats.Uptime), time.Now(), "", ""),
	})
}

// handleLanguages handles GET /api/pdf/languages
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.respondJSON(w, http.StatusOK, pdftext.Languages)
}

func (s *Server) handleExtractRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleExtract(w, r)
}

func (s *Server) handlePreviewRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handlePreview(w, r)
}

// saveUpload stores the multipart "pdf" field in a temporary file. The
// returned cleanup removes it.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (path, name string, cleanup func(), err error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", "", nil, fmt.Errorf("failed to parse form: %v: %w", err, models.ErrInvalidInput)
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		return "", "", nil, fmt.Errorf("missing pdf file: %w", models.ErrInvalidInput)
	}
	defer file.Close()

	name = filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", "", nil, fmt.Errorf("file %q is not a PDF: %w", name, models.ErrInvalidInput)
	}

	ws, err := utils.NewWorkspace(s.config.TempDir, "upload-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	path = ws.Path(utils.NewID() + ".pdf")
	out, err := os.Create(path)
	if err != nil {
		ws.Cleanup()
		return "", "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		ws.Cleanup()
		return "", "", nil, fmt.Errorf("failed to save file: %w", err)
	}
	out.Close()

	return path, name, func() {
		if err := ws.Cleanup(); err != nil {
			s.log.Warnf("Removing upload %s: %v", ws.Dir, err)
		}
	}, nil
}

// handleExtract handles POST /api/pdf/extract
//
// Form fields: pdf (file), method (digital|ocr), language (eng, ben, hin,
// eng+ben), download (true to receive a text attachment).
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	path, name, cleanup, err := s.saveUpload(w, r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	defer cleanup()

	method, err := pdftext.ParseMethod(r.FormValue("method"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	opts := pdftext.Options{Method: method, Language: r.FormValue("language")}
	if dpi, err := strconv.Atoi(r.FormValue("dpi")); err == nil && dpi > 0 {
		opts.DPI = dpi
	}

	s.log.Infof("Extracting %s (%s, %s)", name, method, opts.Language)
	res, err := s.service.ExtractPDF(r.Context(), path, name, opts, func(page, total int) {
		s.log.Debugf("%s: %s", name, pdftext.ProgressMessage(page, total))
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if download, _ := strconv.ParseBool(r.FormValue("download")); download {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdftext.DownloadName))
		io.WriteString(w, res.Text)
		return
	}

	resp := ExtractResponse{
		FileName: name,
		Method:   res.Method,
		Language: res.Language,
		Pages:    res.Pages,
		Chars:    res.Chars,
		Size:     humanize.Bytes(uint64(len(res.Text))),
		Text:     res.Text,
	}
	if res.Empty() {
		resp.Warning = pdftext.EmptyWarning
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handlePreview handles POST /api/pdf/preview and returns a PNG of page one.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path, _, cleanup, err := s.saveUpload(w, r)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	defer cleanup()

	png, err := s.service.PreviewPDF(r.Context(), path)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

// handleListExtractions handles GET /api/pdf/extractions
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	list, err := s.service.ListExtractions(parseLimit(r, 50))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	now := time.Now()
	dtos := make([]ExtractionDTO, len(list))
	for i, e := range list {
		dtos[i] = ExtractionDTO{
			ID:        e.ID,
			FileName:  e.FileName,
			Method:    e.Method,
			Language:  e.Language,
			Pages:     e.Pages,
			Chars:     e.Chars,
			CreatedAt: e.CreatedAt,
			Age:       humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
		}
	}
	s.respondJSON(w, http.StatusOK, ListExtractionsResponse{Extractions: dtos, Count: len(dtos)})
}

func (s *Server) handleTimelineRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleTimeline(w, r)
}

// handleTimeline handles POST /api/timeline
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var req TimelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tl, err := s.service.BuildTimeline(r.Context(), req.TrackURL)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newTimelineResponse(tl))
}

// handleVideos handles GET and POST /api/videos
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListJobs(w, r)
	case http.MethodPost:
		s.handleCreateVideo(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.ListJobs(parseLimit(r, 50))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	dtos := make([]JobDTO, len(jobs))
	for i, j := range jobs {
		dtos[i] = newJobDTO(j)
	}
	s.respondJSON(w, http.StatusOK, ListJobsResponse{Jobs: dtos, Count: len(dtos)})
}

// handleCreateVideo queues a render and answers 202 with the job.
func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.service.SubmitVideo(req.toStudio())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/videos/"+job.ID)
	s.respondJSON(w, http.StatusAccepted, newJobDTO(*job))
}

// handleVideo dispatches /api/videos/{id}[/file|/events] and DELETE /api/videos/{id}
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/videos/"), "/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Job ID required")
		return
	}
	if r.Method == http.MethodDelete && action == "" {
		s.handleDeleteJob(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch action {
	case "":
		s.handleGetJob(w, r, id)
	case "file":
		s.handleVideoFile(w, r, id)
	case "events":
		s.handleEvents(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request, id string) {
	job, err := s.service.GetJob(id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newJobDTO(*job))
}

// handleDeleteJob handles DELETE /api/videos/{id}
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteJob(id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Job deleted successfully",
		"id":      id,
	})
}

// handleVideoFile streams the rendered MP4 of a finished job.
func (s *Server) handleVideoFile(w http.ResponseWriter, r *http.Request, id string) {
	job, err := s.service.GetJob(id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if job.Status != models.JobSucceeded {
		s.respondError(w, http.StatusConflict, fmt.Sprintf("Job is %s", job.Status))
		return
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		s.respondError(w, http.StatusGone, "Video file is no longer available")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(job.OutputPath)))
	http.ServeFile(w, r, job.OutputPath)
}

// parseLimit reads ?limit=, falling back to def.
func parseLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
