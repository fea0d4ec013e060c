package main

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio"
)

const eventWriteTimeout = 10 * time.Second

// handleEvents upgrades GET /api/videos/{id}/events to a websocket and
// streams the job's progress events as JSON until it finishes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, id string) {
	job, err := s.service.GetJob(id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.log.Warnf("Websocket upgrade for job %s failed: %v", id, err)
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles their close frame.
	ctx := conn.CloseRead(r.Context())

	// Jobs finished before this process started have no live events.
	if job.Status.Terminal() {
		wctx, wcancel := context.WithTimeout(ctx, eventWriteTimeout)
		defer wcancel()
		if err := wsjson.Write(wctx, conn, finishedEvent(job)); err == nil {
			conn.Close(websocket.StatusNormalClosure, "job finished")
		}
		return
	}

	events, cancel := s.service.Subscribe(id)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "job finished")
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, eventWriteTimeout)
			err := wsjson.Write(wctx, conn, ev)
			wcancel()
			if err != nil {
				s.log.Debugf("Event stream for job %s ended: %v", id, err)
				return
			}
		}
	}
}

func finishedEvent(job *models.RenderJob) studio.Event {
	ev := studio.Event{JobID: job.ID, Stage: studio.StageDone, Message: job.OutputPath, Time: job.UpdatedAt}
	if job.Status == models.JobFailed {
		ev.Stage = studio.StageFailed
		ev.Message = job.Error
	}
	return ev
}

// originPatterns converts the CORS allow-list for the websocket handshake.
func (s *Server) originPatterns() []string {
	origins := s.config.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return []string{"*"}
	}
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		} else {
			hosts = append(hosts, o)
		}
	}
	return hosts
}
