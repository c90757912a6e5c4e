package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phdev/briefing/pkg/domain"
)

// subscribeEvents streams the session's views as server-sent events. The
// current view is sent first so a client can render without a separate GET.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: streaming not supported")
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	views, cancel, err := s.conv.Subscribe(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cancel()

	current, err := s.conv.View(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	s.writeView(w, current)
	flusher.Flush()
	s.logger.InfoContext(ctx, "SSE: client subscribed", "session_id", id)

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "SSE: client disconnected", "session_id", id)
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case view, ok := <-views:
			if !ok {
				// Session deleted or server shutting down.
				fmt.Fprintf(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			s.writeView(w, view)
			flusher.Flush()
		}
	}
}

func (s *Server) writeView(w http.ResponseWriter, view domain.View) {
	data, err := json.Marshal(view)
	if err != nil {
		s.logger.Error("SSE: view encode failed", "session_id", view.SessionID, "err", err)
		return
	}
	fmt.Fprintf(w, "event: view\ndata: %s\n\n", data)
}
