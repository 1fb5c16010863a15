// Package prefs implements the preference document: a flat JSON object of
// key to value, loaded once, held in memory and rewritten on every Set.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Kzeezee/Pomodoko/internal/store"
)

// ErrWrongType is returned when a stored value cannot be decoded into the
// requested type.
var ErrWrongType = errors.New("preference has wrong type")

// Store is the in-memory preference document. Reads may run concurrently;
// Set calls are serialized so that each write flushes a consistent document.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]json.RawMessage

	// write persists the encoded document; replaced in tests.
	write func(path string, data []byte) error
}

// Load opens the preference document at path, creating an empty document
// (and its parent directory) when the file does not exist.
func Load(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]json.RawMessage),
		write:   writeFileAtomic,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating directory for %s: %w", store.ErrStoreOpen, path, err)
		}
		if err := s.write(path, []byte("{}\n")); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", store.ErrStoreOpen, path, err)
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("%w: reading %s: %w", store.ErrStoreOpen, path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", store.ErrStoreOpen, path, err)
	}
	if s.entries == nil {
		// The document was the literal null.
		s.entries = make(map[string]json.RawMessage)
	}
	// Stored values are indented by flushLocked; keep them in the compact
	// form Set produces.
	for k, v := range s.entries {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %s: %w", store.ErrStoreOpen, path, k, err)
		}
		s.entries[k] = buf.Bytes()
	}
	return s, nil
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw JSON value stored under key. ok is false only when
// the key has never been set; a stored JSON null is reported as present.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), v...), true
}

// GetInt decodes the value under key as an integer.
func (s *Store) GetInt(key string) (int, bool, error) {
	return getInt(s, key)
}

func getInt(g Getter, key string) (int, bool, error) {
	raw, ok := g.Get(key)
	if !ok {
		return 0, false, nil
	}
	if isNull(raw) {
		return 0, true, fmt.Errorf("%w: %s is null", ErrWrongType, key)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, true, fmt.Errorf("%w: %s: %w", ErrWrongType, key, err)
	}
	return n, true, nil
}

// Set stores value under key, replacing any previous value, and writes the
// whole document to disk. If the write fails the in-memory entry is
// restored and the error wraps store.ErrPersistenceWrite.
func (s *Store) Set(key string, value any) error {
	if key == "" {
		return errors.New("preference key must not be empty")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding preference %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.entries[key]
	s.entries[key] = raw

	if err := s.flushLocked(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return fmt.Errorf("%w: %s: %w", store.ErrPersistenceWrite, key, err)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every entry.
func (s *Store) Snapshot() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(s.entries))
	for k, v := range s.entries {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	return s.write(s.path, append(data, '\n'))
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
