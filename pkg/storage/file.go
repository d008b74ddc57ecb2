package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// File is a Storage backed by a single JSON file. The whole file is loaded
// once at construction and kept as a write-through in-memory map, so reads
// never touch the disk. Every mutation rewrites the file atomically
// (write to a temp file, then rename).
//
// This is the durable default for the CLI and for long-lived agents running
// on a single machine: the authentication session survives process restarts
// the same way localStorage survives a page reload.
type File struct {
	path string

	mu   sync.RWMutex
	data map[string]string
}

// NewFile opens (or creates) the store at path. The parent directory is
// created if missing. A corrupt or unreadable state file is treated as
// empty rather than fatal: losing a cached session is recoverable, failing
// to start is not.
//
// Example:
//
//	store, err := storage.NewFile(filepath.Join(stateDir, "session.json"))
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to open session storage")
//	}
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	f := &File{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run, nothing to load
	case err != nil:
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	default:
		if err := json.Unmarshal(raw, &f.data); err != nil {
			log.Warn().
				Err(err).
				Str("path", path).
				Msg("Storage file is corrupt, starting empty")
			f.data = make(map[string]string)
		}
	}

	return f, nil
}

// Get returns the value for key and whether it was present.
func (f *File) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok
}

// Set stores value under key and persists the store.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.flushLocked()
}

// Delete removes the given keys and persists the store.
func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return f.flushLocked()
}

// Clear removes every key and persists the empty store.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string]string)
	return f.flushLocked()
}

// flushLocked writes the current map to disk. Callers must hold f.mu.
func (f *File) flushLocked() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	return nil
}
