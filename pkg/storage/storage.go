// Package storage provides durable client-side key/value storage for the
// CareLink SDK. It plays the role the browser's localStorage plays for the
// web client: a small string-keyed store that survives restarts, holds the
// authentication session and the per-session request identifier, and is
// private to one storage partition (one state file, one redis prefix).
//
// Three implementations are provided:
//   - Memory: volatile, for tests and "fresh tab" scenarios
//   - File: JSON file with a write-through in-memory view (the default)
//   - Redis: shared storage for server-side agents, prefix-scoped
//
// All implementations guarantee synchronous, cheap reads: Get never performs
// I/O on the hot path.
package storage

import "errors"

// ErrNotFound indicates the requested key is absent from storage.
// Callers that treat absence as a normal condition should use the
// boolean returned by Get instead of matching this error.
var ErrNotFound = errors.New("storage: key not found")

// Storage is the contract the session layer depends on. It mirrors the
// localStorage surface the web client uses: string keys, string values,
// whole-store clear on logout.
//
// Reads must be side-effect-free and non-blocking; writes may persist
// asynchronously as long as a subsequent Get on the same instance observes
// the written value.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(keys ...string) error

	// Clear removes every key in this storage partition.
	Clear() error
}
