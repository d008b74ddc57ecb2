// Package retry provides retry logic with exponential backoff for transient
// failures. It is context-aware and adds jitter to prevent thundering herd.
// The CLI uses it around API calls that can fail on flaky networks.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds retry behavior with exponential backoff.
type Config struct {
	MaxAttempts  int              // Maximum number of attempts (including first try)
	InitialDelay time.Duration    // Delay before first retry
	MaxDelay     time.Duration    // Cap on the delay between retries
	Multiplier   float64          // Exponential backoff multiplier
	Jitter       bool             // Add ±25% random variance to delays
	ShouldRetry  func(error) bool // Predicate deciding whether an error is transient (nil = retry all)
}

// DefaultConfig returns a retry configuration with sensible defaults:
// 3 attempts, 100ms initial delay doubling up to 5s, jitter enabled.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// APIConfig returns a retry configuration tuned for remote API calls:
// longer initial delay to ride out rate limits and brief outages.
func APIConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Do executes fn with retry and exponential backoff until it succeeds, the
// attempts are exhausted, or ctx is cancelled.
//
// Example:
//
//	err := retry.Do(ctx, retry.APIConfig(), func() error {
//	    _, err := svc.Today(ctx)
//	    return err
//	})
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is the generic form of Do for operations returning a value.
//
// Example:
//
//	cards, err := retry.DoWithResult(ctx, retry.APIConfig(), func() ([]services.ActionCard, error) {
//	    return svc.Today(ctx)
//	})
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		res, err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Int("attempt", attempt).
					Int("max_attempts", cfg.MaxAttempts).
					Msg("Operation succeeded after retry")
			}
			return res, nil
		}

		lastErr = err

		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			log.Debug().
				Err(err).
				Int("attempt", attempt).
				Msg("Error is not retryable, aborting")
			return zero, fmt.Errorf("non-retryable error: %w", err)
		}

		if attempt >= cfg.MaxAttempts {
			log.Warn().
				Err(err).
				Int("attempts", attempt).
				Msg("Max retry attempts reached")
			break
		}

		delay := backoffDelay(attempt, cfg)

		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("delay", delay).
			Msg("Operation failed, retrying after delay")

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("max retries exceeded (%d attempts): %w", cfg.MaxAttempts, lastErr)
}

// backoffDelay computes initialDelay * multiplier^(attempt-1), capped at
// MaxDelay, with optional ±25% jitter.
func backoffDelay(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	if cfg.Jitter {
		jitterRange := delay * 0.25
		delay += (rand.Float64() * 2 * jitterRange) - jitterRange
	}

	return time.Duration(delay)
}
