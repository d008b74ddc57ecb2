package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig keeps test runtime low.
func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := Do(context.Background(), fastConfig(3), func() error {
			calls++
			return boom
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error aborts immediately", func(t *testing.T) {
		fatal := errors.New("fatal")
		cfg := fastConfig(5)
		cfg.ShouldRetry = func(err error) bool { return !errors.Is(err, fatal) }

		calls := 0
		err := Do(context.Background(), cfg, func() error {
			calls++
			return fatal
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := fastConfig(10)
		cfg.InitialDelay = 50 * time.Millisecond

		calls := 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := Do(ctx, cfg, func() error {
			calls++
			return errors.New("transient")
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	t.Run("returns the value on success", func(t *testing.T) {
		calls := 0
		got, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
			calls++
			if calls < 2 {
				return "", errors.New("transient")
			}
			return "payload", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "payload", got)
		assert.Equal(t, 2, calls)
	})

	t.Run("returns zero value on failure", func(t *testing.T) {
		got, err := DoWithResult(context.Background(), fastConfig(2), func() (int, error) {
			return 7, errors.New("always")
		})
		require.Error(t, err)
		assert.Equal(t, 0, got)
	})
}

func TestBackoffDelay(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, 100*time.Millisecond, backoffDelay(1, cfg))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(2, cfg))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(3, cfg))
	// Capped at MaxDelay
	assert.Equal(t, time.Second, backoffDelay(10, cfg))

	t.Run("jitter stays within 25 percent", func(t *testing.T) {
		cfg := cfg
		cfg.Jitter = true
		for i := 0; i < 50; i++ {
			d := backoffDelay(1, cfg)
			assert.GreaterOrEqual(t, d, 75*time.Millisecond)
			assert.LessOrEqual(t, d, 125*time.Millisecond)
		}
	})
}
