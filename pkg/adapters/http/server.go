package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/internal/logging"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/object"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes an observed object over HTTP. Every read and write it performs goes through
// the observer, so listeners, journals and metrics see API traffic like any other access.
type Server struct {
	obs      *observer.ObjectObserver
	journal  ports.Journal
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	Streams *StreamManager
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithJournal enables GET /journal.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithGatherer enables GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the inspector API for obs. Close must be called to stop streaming
// changes once the server is no longer used.
func NewHandler(obs *observer.ObjectObserver, opts ...Option) *Server {
	s := &Server{
		obs:     obs,
		logger:  logging.NewNop(),
		Streams: NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	obs.On(string(domain.EventSet), s.broadcast, s)

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/properties", func(r chi.Router) {
		r.Get("/", s.ListProperties)
		r.Get("/{name}", s.GetProperty)
		r.Put("/{name}", s.PutProperty)
		r.Post("/{name}/call", s.CallProperty)
	})
	if s.journal != nil {
		r.Get("/journal", s.GetJournal)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close detaches the server from the observer.
func (s *Server) Close() {
	s.obs.Off("", nil, s)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PropertyValue is the body of single property responses.
type PropertyValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// CallResult is the body of POST /properties/{name}/call responses.
type CallResult struct {
	Result any `json:"result"`
}

// ListProperties handles GET /properties.
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	target := s.obs.Target()
	values := make(map[string]any)
	for _, name := range s.obs.Properties() {
		p, _ := s.obs.Property(name)
		if p != nil && p.FunctionValued() {
			values[name] = "[method]"
			continue
		}
		v, err := target.Get(name)
		if err != nil {
			s.fail(w, "ListProperties", err)
			return
		}
		values[name] = v
	}
	s.writeJSON(w, http.StatusOK, values)
}

// GetProperty handles GET /properties/{name}.
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	name, ok := s.observed(w, r)
	if !ok {
		return
	}
	v, err := s.obs.Target().Get(name)
	if err != nil {
		s.fail(w, "GetProperty", err)
		return
	}
	s.writeJSON(w, http.StatusOK, PropertyValue{Name: name, Value: v})
}

// PutProperty handles PUT /properties/{name}. The response carries the value read back, so a
// vetoed write shows the unchanged value.
func (s *Server) PutProperty(w http.ResponseWriter, r *http.Request) {
	name, ok := s.observed(w, r)
	if !ok {
		return
	}
	value, err := decodeBody[any](r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), bodyStatus(err))
		s.logger.Warn("PutProperty: Invalid request body", "error", err)
		return
	}

	target := s.obs.Target()
	if err = target.Set(name, value); err != nil {
		s.fail(w, "PutProperty", err)
		return
	}
	current, err := target.Get(name)
	if err != nil {
		s.fail(w, "PutProperty", err)
		return
	}
	s.writeJSON(w, http.StatusOK, PropertyValue{Name: name, Value: current})
}

// CallProperty handles POST /properties/{name}/call. The body is a JSON array of arguments;
// an empty body calls without arguments.
func (s *Server) CallProperty(w http.ResponseWriter, r *http.Request) {
	name, ok := s.observed(w, r)
	if !ok {
		return
	}
	var args []any
	if r.ContentLength != 0 {
		var err error
		if args, err = decodeBody[[]any](r); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: expected a JSON array: %v", err), bodyStatus(err))
			s.logger.Warn("CallProperty: Invalid request body", "error", err)
			return
		}
	}
	result, err := s.obs.Target().Call(name, args...)
	if err != nil {
		s.fail(w, "CallProperty", err)
		return
	}
	s.writeJSON(w, http.StatusOK, CallResult{Result: result})
}

// GetJournal handles GET /journal.
func (s *Server) GetJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journal.Entries(r.Context())
	if err != nil {
		s.fail(w, "GetJournal", err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":        "vigil-http",
		"version":    strings.TrimSpace(vigil.Version),
		"properties": len(s.obs.Properties()),
	})
}

// observed resolves the {name} parameter, answering 404 for names that are not observed.
func (s *Server) observed(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if _, ok := s.obs.Property(name); !ok {
		http.Error(w, fmt.Sprintf("%v: %q", domain.ErrUnknownProperty, name), http.StatusNotFound)
		return "", false
	}
	return name, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, object.ErrReadOnly):
		status = http.StatusConflict
	case errors.Is(err, object.ErrNotCallable):
		status = http.StatusBadRequest
	case errors.Is(err, schema.ErrInvalid):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
