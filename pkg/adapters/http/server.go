package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/internal/presentation/graph"
	"github.com/daymxn/story/pkg/domain"
	"github.com/daymxn/story/pkg/scene"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulator is the scene surface the server drives.
type Simulator interface {
	Apply(step scene.Step) error
	Next() (bool, error)
	Snapshot() scene.Snapshot
	Trace() []scene.TraceEntry
}

// Server exposes a running scene over HTTP.
type Server struct {
	Sim      Simulator
	Streams  *StreamManager
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer serves /metrics from g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithStreams serves /events from sm. Wire sm.Hooks() into the simulator so
// events reach it.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for sim.
func NewHandler(sim Simulator, opts ...Option) http.Handler {
	s := &Server{
		Sim:    sim,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/tree", s.GetTree)
	r.Get("/trace", s.GetTrace)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Post("/steps/next", s.NextStep)
	r.Post("/hosts/destroy/*", s.DestroyHost)
	r.Post("/stories/{name}/{action}", s.StoryAction)
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

// GetTrace handles the GET /trace request.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Sim.Trace())
}

// GetGraph handles the GET /graph request with a Mermaid diagram.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Sim.Snapshot())))
}

// NextStep handles the POST /steps/next request.
func (s *Server) NextStep(w http.ResponseWriter, r *http.Request) {
	more, err := s.Sim.Next()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !more {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "script exhausted"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

// DestroyHost handles the POST /hosts/destroy/{path...} request.
func (s *Server) DestroyHost(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(chi.URLParam(r, "*"), "/")
	s.apply(w, scene.Step{Action: scene.ActionDestroyHost, Target: path})
}

// StoryAction handles POST /stories/{name}/{redraw|draw|destroy}.
func (s *Server) StoryAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	raw := chi.URLParam(r, "action")
	if raw == "destroy" {
		raw = string(scene.ActionDestroyStory)
	}
	action, err := scene.ParseAction(raw)
	if err != nil || action == scene.ActionDestroyHost {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown story action %q", raw)})
		return
	}
	s.apply(w, scene.Step{Action: action, Target: name})
}

func (s *Server) apply(w http.ResponseWriter, step scene.Step) {
	if err := s.Sim.Apply(step); err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Info("step applied", "step", step.String())
	s.writeJSON(w, http.StatusOK, s.Sim.Snapshot())
}

// SubscribeEvents handles the GET /events request (SSE). The optional
// "types" query parameter filters by comma separated event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	filter := make(map[domain.EventType]bool)
	if types := r.URL.Query().Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			filter[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(filter) > 0 {
				var e domain.StoryEvent
				if err := json.Unmarshal(msg, &e); err == nil && !filter[e.Type] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrHostNotFound), errors.Is(err, domain.ErrStoryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownAction):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
