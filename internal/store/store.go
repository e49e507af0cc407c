package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/halfdome/confwatch/internal/ioutils"
)

// ErrUnavailable is returned by Set when the store directory could not be
// used and the value was kept in session memory only. Callers that persist
// on a best-effort basis ignore it; the explicit settings-save path surfaces
// it to the user.
var ErrUnavailable = errors.New("store unavailable")

// Store persists small JSON values under string keys, one file per key.
//
// All methods are safe for concurrent use; the watch daemon writes ledger
// entries from a cron goroutine while the interactive surfaces read.
type Store struct {
	dir       string
	available bool

	mu    sync.Mutex
	cache map[string]json.RawMessage
}

// Open returns a store rooted at dir, creating the directory if needed.
//
// Open never fails: when the directory cannot be created the store still
// works for the life of the process, backed by memory alone, and Available
// reports false.
func Open(dir string) *Store {
	s := &Store{
		dir:   dir,
		cache: make(map[string]json.RawMessage),
	}
	if err := ioutils.EnsureDir(dir); err == nil {
		s.available = true
	}
	return s
}

// Available reports whether values written to the store survive the process.
func (s *Store) Available() bool {
	return s.available
}

// Get decodes the value stored under key into v and reports whether the key
// held a usable value. Missing files, unreadable files and blobs that fail
// to decode all report false; corruption is never an error past this
// boundary.
func (s *Store) Get(key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.cache[key]
	if !ok && s.available {
		data, err := os.ReadFile(s.path(key))
		if err != nil {
			return false
		}
		raw = data
	}
	if raw == nil {
		return false
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	s.cache[key] = raw
	return true
}

// Set replaces the value stored under key. The new value is always kept in
// session memory; when the store directory is unusable Set reports
// ErrUnavailable, and when the file write itself fails Set reports that
// error. In both cases reads within this session still see the new value.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = raw
	if !s.available {
		return fmt.Errorf("set %q: %w", key, ErrUnavailable)
	}
	if err := ioutils.WriteFileAtomic(s.path(key), raw, 0o644); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing an absent key is a
// no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)
	if !s.available {
		return nil
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Clear removes every value the store manages, in memory and on disk. Only
// files inside the store directory are touched.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string]json.RawMessage)
	if !s.available {
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("clear %q: %w", entry.Name(), err)
		}
	}
	return nil
}

// path maps a logical key to its blob file inside the store directory.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, ioutils.SanitizeFileName(key)+".json")
}
