package session_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

func TestCorrelationID(t *testing.T) {
	t.Run("generates a valid UUID on first use", func(t *testing.T) {
		c := session.NewCorrelationID(storage.NewMemory())

		id := c.Get()
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("stable across calls", func(t *testing.T) {
		c := session.NewCorrelationID(storage.NewMemory())

		first := c.Get()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Get())
		}
	})

	t.Run("persisted in storage", func(t *testing.T) {
		mem := storage.NewMemory()
		id := session.NewCorrelationID(mem).Get()

		// A second provider over the same partition resumes the same ID.
		assert.Equal(t, id, session.NewCorrelationID(mem).Get())
	})

	t.Run("regenerated after storage clear", func(t *testing.T) {
		mem := storage.NewMemory()
		c := session.NewCorrelationID(mem)

		first := c.Get()
		require.NoError(t, mem.Clear())
		second := c.Get()

		assert.NotEqual(t, first, second)
		assert.Equal(t, second, c.Get())
	})

	t.Run("concurrent first calls agree on one ID", func(t *testing.T) {
		c := session.NewCorrelationID(storage.NewMemory())

		const n = 16
		ids := make([]string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i] = c.Get()
			}(i)
		}
		wg.Wait()

		for i := 1; i < n; i++ {
			assert.Equal(t, ids[0], ids[i])
		}
	})
}
