package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kzeezee/Pomodoko/internal/prefs"
	"github.com/Kzeezee/Pomodoko/internal/store"
)

func (s *Server) handleGreet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"greeting": Greet(r.URL.Query().Get("name"))})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	version, err := s.tasks.GetSchemaVersion(r.Context())
	if err != nil {
		s.internalError(w, "reading schema version", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":       s.version,
		"schemaVersion": version,
		"database":      s.tasks.Path(),
		"preferences":   s.prefs.Path(),
		"time":          time.Now().UTC().Format(time.RFC3339),
	})
}

type preferenceEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	snap := s.prefs.Snapshot()
	entries := make([]preferenceEntry, 0, len(snap))
	for k, v := range snap {
		entries = append(entries, preferenceEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, ok := s.prefs.Get(key)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "preference "+key+" is not set")
		return
	}
	writeJSON(w, http.StatusOK, preferenceEntry{Key: key, Value: v})
}

func (s *Server) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var value json.RawMessage
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&value); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "body must be a JSON value")
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "body must hold a single JSON value")
		return
	}
	if err := s.prefs.Set(key, value); err != nil {
		if errors.Is(err, store.ErrPersistenceWrite) {
			s.log.Error("saving preference %s: %v", key, err)
			writeJSONError(w, http.StatusInternalServerError, "persistence_write", err.Error())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preferenceEntry{Key: key, Value: value})
}

type durationView struct {
	Seconds int    `json:"seconds"`
	Clock   string `json:"clock"`
}

func (s *Server) handleDurations(w http.ResponseWriter, r *http.Request) {
	d, err := prefs.ReadDurations(s.prefs)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_preference", err.Error())
		return
	}
	view := func(v time.Duration) durationView {
		return durationView{Seconds: int(v / time.Second), Clock: prefs.FormatClock(v)}
	}
	writeJSON(w, http.StatusOK, map[string]durationView{
		prefs.KeyPomodoro:  view(d.Pomodoro),
		prefs.KeyShortRest: view(d.ShortRest),
		prefs.KeyLongRest:  view(d.LongRest),
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		s.internalError(w, "listing tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	task, err := s.tasks.CreateTask(r.Context(), payload.Name)
	if err != nil {
		s.internalError(w, "creating task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name      *string `json:"name"`
		Completed *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ctx := r.Context()
	if payload.Name != nil {
		if err := s.tasks.RenameTask(ctx, id, *payload.Name); err != nil {
			s.taskError(w, err)
			return
		}
	}
	if payload.Completed != nil {
		if err := s.tasks.SetTaskCompleted(ctx, id, *payload.Completed); err != nil {
			s.taskError(w, err)
			return
		}
	}
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		s.taskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := s.tasks.DeleteTask(r.Context(), id); err != nil {
		s.taskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "task id must be an integer")
		return 0, false
	}
	return id, true
}

func (s *Server) taskError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrTaskNotFound) {
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	s.internalError(w, "updating task", err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("%s: %v", op, err)
	writeJSONError(w, http.StatusInternalServerError, "internal", op+" failed")
}
