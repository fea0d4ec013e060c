package main

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/himanishpuri/studiokit/pkg/logger"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/health/metrics", s.handleMetrics)

	// PDF extraction
	mux.HandleFunc("/api/pdf/extract", s.handleExtractRoute)
	mux.HandleFunc("/api/pdf/preview", s.handlePreviewRoute)
	mux.HandleFunc("/api/pdf/extractions", s.handleListExtractions)
	mux.HandleFunc("/api/pdf/languages", s.handleLanguages)

	// Lyrics video
	mux.HandleFunc("/api/timeline", s.handleTimelineRoute)
	mux.HandleFunc("/api/videos", s.handleVideos)
	mux.HandleFunc("/api/videos/", s.handleVideo)

	return corsMiddleware(s.config.AllowedOrigins)(loggingMiddleware(mux))
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Add("Vary", "Origin")
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs every request with its status
func loggingMiddleware(next http.Handler) http.Handler {
	log := logger.GetLogger().With("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Debugf("%s %s from %s -> %d", r.Method, r.URL.Path, getClientIP(r), wrapped.statusCode)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrade reach the
// underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack is needed for websocket upgrades through the middleware.
func (rw *responseWriter) Hijack() (c net.Conn, brw *bufio.ReadWriter, err error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start starts the HTTP server
func (s *Server) Start() error {
	handler := s.setupRoutes()

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("studiokit server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	s.log.Infof("   Output dir: %s", s.config.OutputDir)
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET    /                         - Web page")
	s.log.Infof("   GET    /health                   - Health check")
	s.log.Infof("   GET    /api/health/metrics       - Server metrics")
	s.log.Infof("   POST   /api/pdf/extract          - Extract text from a PDF")
	s.log.Infof("   POST   /api/pdf/preview          - Render the first PDF page")
	s.log.Infof("   GET    /api/pdf/extractions      - Recent extractions")
	s.log.Infof("   POST   /api/timeline             - Compile a lyrics timeline")
	s.log.Infof("   POST   /api/videos               - Queue a lyrics video")
	s.log.Infof("   GET    /api/videos               - List render jobs")
	s.log.Infof("   GET    /api/videos/{id}          - Job status")
	s.log.Infof("   DELETE /api/videos/{id}          - Delete job and video")
	s.log.Infof("   GET    /api/videos/{id}/file     - Download video")
	s.log.Infof("   GET    /api/videos/{id}/events   - Progress (websocket)")

	s.http = &http.Server{Addr: addr, Handler: handler}
	return s.http.ListenAndServe()
}
