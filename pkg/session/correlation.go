package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

// keyRequestID is the storage key for the per-session correlation ID.
const keyRequestID = "session.requestId"

// CorrelationID produces the single request-correlation identifier for one
// storage session. The ID is a UUIDv7, so it sorts by creation time across
// log pipelines, and it lives as long as the storage partition: every
// request in a session carries the same X-Request-ID, and a cleared
// partition yields a fresh one.
//
// Get never blocks and never fails: when storage writes fail the provider
// degrades to a process-local cached ID, keeping the stability invariant
// for the life of the process.
type CorrelationID struct {
	store storage.Storage

	mu       sync.Mutex
	fallback string
}

// NewCorrelationID wraps a storage partition.
func NewCorrelationID(store storage.Storage) *CorrelationID {
	return &CorrelationID{store: store}
}

// Get returns the session's correlation ID, generating and persisting one
// on first use.
func (c *CorrelationID) Get() string {
	if id, ok := c.store.Get(keyRequestID); ok && id != "" {
		return id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock so concurrent first calls agree on one ID.
	if id, ok := c.store.Get(keyRequestID); ok && id != "" {
		return id
	}
	if c.fallback != "" {
		return c.fallback
	}

	id := newRequestID()
	if err := c.store.Set(keyRequestID, id); err != nil {
		log.Warn().Err(err).Msg("Failed to persist request ID, using in-memory fallback")
		c.fallback = id
	}
	return id
}

// newRequestID generates a time-sortable identifier. UUIDv7 generation can
// only fail when the system entropy source is broken; a random UUIDv4 keeps
// the provider total at the cost of sortability.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
