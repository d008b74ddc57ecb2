package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		m := NewMemory()

		require.NoError(t, m.Set("k", "v"))
		v, ok := m.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("missing key", func(t *testing.T) {
		m := NewMemory()

		v, ok := m.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("delete removes multiple keys", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set("a", "1"))
		require.NoError(t, m.Set("b", "2"))
		require.NoError(t, m.Set("c", "3"))

		require.NoError(t, m.Delete("a", "b"))

		_, ok := m.Get("a")
		assert.False(t, ok)
		_, ok = m.Get("b")
		assert.False(t, ok)
		_, ok = m.Get("c")
		assert.True(t, ok)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set("a", "1"))

		require.NoError(t, m.Clear())

		_, ok := m.Get("a")
		assert.False(t, ok)
	})

	t.Run("overwrite replaces value", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set("k", "old"))
		require.NoError(t, m.Set("k", "new"))

		v, _ := m.Get("k")
		assert.Equal(t, "new", v)
	})
}
