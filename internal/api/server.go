// Package api serves the JSON command surface the UI talks to. It is meant
// to be bound to the loopback interface only.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/Kzeezee/Pomodoko/internal/logger"
	"github.com/Kzeezee/Pomodoko/internal/store"
)

// TaskStore is the task persistence the API needs.
type TaskStore interface {
	CreateTask(ctx context.Context, name string) (store.Task, error)
	GetTask(ctx context.Context, id int64) (store.Task, error)
	ListTasks(ctx context.Context) ([]store.Task, error)
	SetTaskCompleted(ctx context.Context, id int64, completed bool) error
	RenameTask(ctx context.Context, id int64, name string) error
	DeleteTask(ctx context.Context, id int64) error
	GetSchemaVersion(ctx context.Context) (int, error)
	Path() string
}

// PreferenceStore is the preference access the API needs.
type PreferenceStore interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, value any) error
	Snapshot() map[string]json.RawMessage
	Path() string
}

// Server routes command requests to the stores.
type Server struct {
	tasks   TaskStore
	prefs   PreferenceStore
	log     logger.Logger
	version string

	ready atomic.Bool
}

// NewServer returns a Server that reports not-ready until SetReady(true).
func NewServer(tasks TaskStore, prefs PreferenceStore, log logger.Logger, version string) *Server {
	if log == nil {
		log = logger.Default
	}
	return &Server{
		tasks:   tasks,
		prefs:   prefs,
		log:     log,
		version: version,
	}
}

// SetReady toggles whether /api requests are served.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireReady, jsonOnly)

		r.Get("/greet", s.handleGreet)
		r.Get("/status", s.handleStatus)

		r.Get("/preferences", s.handleListPreferences)
		r.Get("/preferences/{key}", s.handleGetPreference)
		r.Put("/preferences/{key}", s.handleSetPreference)
		r.Get("/durations", s.handleDurations)

		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Patch("/tasks/{id}", s.handleUpdateTask)
		r.Delete("/tasks/{id}", s.handleDeleteTask)
	})

	return r
}

func (s *Server) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "stores are not initialized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonOnly enforces the JSON-only contract for command routes.
func jsonOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		if !strings.Contains(accept, "application/json") && accept != "" && accept != "*/*" {
			writeJSONError(w, http.StatusNotAcceptable, "not_acceptable", "Accept must include application/json")
			return
		}
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": msg,
	})
}
