package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/internal/presentation/graph"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/flow"
	"github.com/phdev/briefing/pkg/ports"
	"github.com/phdev/briefing/pkg/wizard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultHeartbeat is the SSE keep-alive interval.
const DefaultHeartbeat = 15 * time.Second

// Server exposes a Conversation over HTTP.
type Server struct {
	conv      ports.Conversation
	doc       *openapi3.T
	table     *flow.Table
	logger    *slog.Logger
	origin    string
	metrics   http.Handler
	health    func(context.Context) error
	version   string
	heartbeat time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowedOrigin sets Access-Control-Allow-Origin. Defaults to "*".
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		s.origin = origin
	}
}

// WithGraph enables GET /graph for the given table.
func WithGraph(t *flow.Table) Option {
	return func(s *Server) {
		s.table = t
	}
}

// WithMetrics serves the gatherer's metrics at GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
}

// WithHealthCheck adds a dependency probe to GET /health.
func WithHealthCheck(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.health = fn
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// NewHandler creates the HTTP handler for a conversation.
func NewHandler(conv ports.Conversation, opts ...Option) (http.Handler, error) {
	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s := &Server{
		conv:      conv,
		doc:       doc,
		logger:    logging.NewNop(),
		origin:    "*",
		version:   "dev",
		heartbeat: DefaultHeartbeat,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Post("/sessions", s.startSession)
	r.Get("/sessions/{id}", s.getSession)
	r.Delete("/sessions/{id}", s.deleteSession)
	r.Post("/sessions/{id}/text", s.submitText)
	r.Post("/sessions/{id}/option", s.selectOption)
	r.Post("/sessions/{id}/toggle", s.toggleOption)
	r.Post("/sessions/{id}/confirm", s.confirmSelection)
	r.Post("/sessions/{id}/control", s.applyControl)
	r.Get("/sessions/{id}/events", s.subscribeEvents)

	r.Get("/packages", s.listPackages)
	r.Get("/graph", s.getGraph)
	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(RawSpec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return r, nil
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startRequest struct {
	Package string `json:"package"`
}

type textRequest struct {
	Text string `json:"text"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type controlRequest struct {
	Action string `json:"action"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.conv.Start(r.Context(), domain.Seed{ProjectType: strings.TrimSpace(body.Package)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+view.SessionID)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.conv.View(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.conv.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submitText(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.conv.SubmitText(r.Context(), chi.URLParam(r, "id"), body.Text))
}

func (s *Server) selectOption(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.conv.SelectOption(r.Context(), chi.URLParam(r, "id"), body.Value))
}

func (s *Server) toggleOption(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.conv.Toggle(r.Context(), chi.URLParam(r, "id"), body.Value))
}

func (s *Server) confirmSelection(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.conv.Confirm(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) applyControl(w http.ResponseWriter, r *http.Request) {
	var body controlRequest
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := domain.ParseControl(body.Action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.conv.Control(r.Context(), chi.URLParam(r, "id"), c))
}

// respond writes the view or the mapped error.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) func(domain.View, error) {
	return func(view domain.View, err error) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wizard.Packages())
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	if s.table == nil {
		http.NotFound(w, r)
		return
	}
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session"); id != "" {
		view, err := s.conv.View(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		overlay = graph.OverlayFor(view)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.table, overlay)))
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "briefing",
		"version": s.version,
	})
}
