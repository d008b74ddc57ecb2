// Package apilog provides structured request/response/error logging for the
// CareLink API client, with recursive masking of sensitive fields and
// length-capped bodies. It is a pure side-effect component: nothing here
// returns an error or alters the request flow, so callers can log
// unconditionally without defensive code.
//
// Logging is controlled by a mutable Config with a master switch, per-phase
// switches, header/body inclusion toggles, and a maximum serialized body
// length. Toggles can be flipped at runtime, e.g. to capture one noisy
// session without restarting an agent.
//
// Example:
//
//	logger := apilog.New(apilog.DefaultConfig())
//	logger.Request("018f..", "POST", "/v1/auth/login", header, nil, body)
package apilog

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the runtime logging switches.
type Config struct {
	Enabled         bool // master switch; off silences every phase
	RequestEnabled  bool // outbound request records
	ResponseEnabled bool // response records
	ErrorEnabled    bool // error records
	IncludeHeaders  bool // attach masked headers to records
	IncludeBody     bool // attach masked bodies to records
	MaxBodyLength   int  // serialized body cap in characters; 0 = unlimited
}

// DefaultConfig returns the defaults the web client shipped with:
// everything on, bodies capped at 5000 characters.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		RequestEnabled:  true,
		ResponseEnabled: true,
		ErrorEnabled:    true,
		IncludeHeaders:  true,
		IncludeBody:     true,
		MaxBodyLength:   5000,
	}
}

// Logger emits request, response and error records through zerolog.
// All methods are safe for concurrent use; configuration changes apply to
// records emitted after the change.
type Logger struct {
	mu  sync.RWMutex
	cfg Config
	zl  zerolog.Logger
}

// New creates a Logger with the given configuration, writing through the
// process-wide zerolog logger.
func New(cfg Config) *Logger {
	return &Logger{
		cfg: cfg,
		zl:  log.With().Str("component", "api_client").Logger(),
	}
}

// SetConfig replaces the entire configuration.
func (l *Logger) SetConfig(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
}

// SetEnabled flips the master switch.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.Enabled = enabled
}

// SetRequestEnabled toggles request-phase records.
func (l *Logger) SetRequestEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.RequestEnabled = enabled
}

// SetResponseEnabled toggles response-phase records.
func (l *Logger) SetResponseEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.ResponseEnabled = enabled
}

// SetErrorEnabled toggles error-phase records.
func (l *Logger) SetErrorEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.ErrorEnabled = enabled
}

// Config returns a copy of the current configuration.
func (l *Logger) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Request logs an outbound request. Headers and body are masked; the body is
// truncated to the configured maximum. requestID may be empty, in which case
// the record carries the "-" placeholder.
func (l *Logger) Request(requestID, method, path string, header http.Header, query url.Values, body []byte) {
	cfg := l.Config()
	if !cfg.Enabled || !cfg.RequestEnabled {
		return
	}

	ev := l.zl.Info().
		Str("phase", "request").
		Str("request_id", orPlaceholder(requestID)).
		Str("timestamp", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("method", method).
		Str("path", path)

	if len(query) > 0 {
		ev = ev.Str("query", query.Encode())
	}
	if cfg.IncludeHeaders && len(header) > 0 {
		ev = ev.Interface("headers", maskHeaders(header))
	}
	if cfg.IncludeBody && len(body) > 0 {
		ev = ev.Str("body", formatBody(body, cfg.MaxBodyLength))
	}

	ev.Msg("API request")
}

// Response logs a completed request. duration is the elapsed wall time since
// the request record was emitted; zero means no start time was available and
// the field is omitted.
func (l *Logger) Response(requestID, method, path string, status int, header http.Header, body []byte, duration time.Duration) {
	cfg := l.Config()
	if !cfg.Enabled || !cfg.ResponseEnabled {
		return
	}

	ev := l.zl.Info().
		Str("phase", "response").
		Str("request_id", orPlaceholder(requestID)).
		Str("timestamp", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("method", method).
		Str("path", path).
		Int("status", status)

	if duration > 0 {
		ev = ev.Int64("duration_ms", duration.Milliseconds())
	}
	if cfg.IncludeHeaders && len(header) > 0 {
		ev = ev.Interface("headers", maskHeaders(header))
	}
	if cfg.IncludeBody && len(body) > 0 {
		ev = ev.Str("body", formatBody(body, cfg.MaxBodyLength))
	}

	ev.Msg("API response")
}

// Error logs a failed request. status is 0 when no HTTP response was
// received (network failure, timeout, cancellation); body is the error
// response body if one was present.
func (l *Logger) Error(requestID, method, path string, err error, status int, body []byte, duration time.Duration) {
	cfg := l.Config()
	if !cfg.Enabled || !cfg.ErrorEnabled {
		return
	}

	ev := l.zl.Error().
		Str("phase", "error").
		Str("request_id", orPlaceholder(requestID)).
		Str("timestamp", time.Now().UTC().Format(time.RFC3339Nano)).
		Str("method", method).
		Str("path", path).
		Err(err)

	if status > 0 {
		ev = ev.Int("status", status)
	} else {
		ev = ev.Bool("no_response", true)
	}
	if duration > 0 {
		ev = ev.Int64("duration_ms", duration.Milliseconds())
	}
	if cfg.IncludeBody && len(body) > 0 {
		ev = ev.Str("body", formatBody(body, cfg.MaxBodyLength))
	}

	ev.Msg("API error")
}

// orPlaceholder substitutes "-" for an absent correlation ID so log lines
// stay grep-able.
func orPlaceholder(requestID string) string {
	if requestID == "" {
		return "-"
	}
	return requestID
}
