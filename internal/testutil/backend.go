// Package testutil provides a programmable fake API backend and shared
// fixtures for tests across the project.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
)

// signing secret for tokens issued by the fake backend
var backendSecret = []byte("testutil-backend-secret-0123456789abcdef")

// RecordedRequest captures the parts of an incoming request that tests
// assert on.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

// Backend is a fake API server speaking the standard response envelope.
// It issues real signed tokens on login, rotates them on refresh, and
// rejects protected requests whose bearer token is not the current access
// token. Behavior is programmable per test: refresh can be held open,
// forced to fail, and the current access token can be expired on demand.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	tokenSerial  int
	refreshCalls int
	refreshFail  int // status to return from refresh, 0 = succeed
	refreshHold  chan struct{}
	rejectLeft   int // protected requests to reject regardless of token
	requests     []RecordedRequest
}

// NewBackend starts a fake backend and registers cleanup on t.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(b.record)

	r.Post("/v1/auth/login", b.handleLogin)
	r.Post("/v1/auth/signup", b.handleSignup)
	r.Post("/v1/auth/refresh", b.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(b.requireAuth)
		r.Get("/v1/users/me", b.handleMe)
		r.Get("/v1/actions/today", b.handleActionsToday)
		r.Get("/v1/missions", b.handleMissions)
		r.Get("/v1/echo", b.handleEcho)
		r.Get("/v1/reports/{id}", b.handleGetReport)
		r.Delete("/v1/reports/{id}", b.handleDeleteReport)
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string { return b.Server.URL }

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// RefreshCalls returns how many times the refresh endpoint was hit.
func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

// AccessToken returns the currently valid access token.
func (b *Backend) AccessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accessToken
}

// RefreshToken returns the currently valid refresh token.
func (b *Backend) RefreshToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshToken
}

// ExpireAccess invalidates the current access token without touching the
// refresh token, so the next protected request gets a 401.
func (b *Backend) ExpireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessToken = ""
}

// FailRefresh makes the refresh endpoint answer with the given status
// instead of rotating tokens. Pass 0 to restore normal behavior.
func (b *Backend) FailRefresh(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshFail = status
}

// RejectProtected makes the next n protected requests fail with 401 no
// matter what token they carry. Use it to simulate a backend that keeps
// rejecting a client even after a successful refresh.
func (b *Backend) RejectProtected(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectLeft = n
}

// HoldRefresh makes the refresh handler block until the returned release
// function is called. Lets a test pile up concurrent requests behind one
// in-flight refresh.
func (b *Backend) HoldRefresh() (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.refreshHold = ch
	b.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		current := b.accessToken
		reject := b.rejectLeft > 0
		if reject {
			b.rejectLeft--
		}
		b.mu.Unlock()

		got := r.Header.Get("Authorization")
		if reject || current == "" || got != "Bearer "+current {
			WriteError(w, http.StatusUnauthorized, "access token invalid or expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Password == "wrong-password" {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	b.mu.Lock()
	b.rotateLocked()
	resp := b.tokenResponseLocked(req.Email)
	b.mu.Unlock()

	WriteData(w, http.StatusOK, resp)
}

func (b *Backend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	WriteData(w, http.StatusCreated, map[string]any{
		"id":    "user-1",
		"email": req.Email,
		"name":  req.Name,
		"role":  "USER",
	})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	hold := b.refreshHold
	fail := b.refreshFail
	current := b.refreshToken
	b.mu.Unlock()

	if hold != nil {
		<-hold
	}

	if fail != 0 {
		WriteError(w, fail, "refresh token invalid or expired")
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != current {
		WriteError(w, http.StatusUnauthorized, "refresh token invalid or expired")
		return
	}

	b.mu.Lock()
	b.rotateLocked()
	resp := b.tokenResponseLocked("senior@example.com")
	b.mu.Unlock()

	WriteData(w, http.StatusOK, resp)
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, map[string]any{
		"userId": "user-1",
		"email":  "senior@example.com",
		"name":   "Test Senior",
		"role":   "SENIOR",
	})
}

func (b *Backend) handleActionsToday(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, []map[string]any{
		{
			"actionId": "act-1",
			"userId":   "user-1",
			"title":    "Morning walk",
			"category": "EXERCISE",
			"status":   "PENDING",
			"date":     time.Now().Format("2006-01-02"),
		},
	})
}

func (b *Backend) handleMissions(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, []map[string]any{})
}

func (b *Backend) handleEcho(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, map[string]any{"query": r.URL.RawQuery})
}

// handleGetReport knows no reports, so every lookup is a 404 envelope,
// the shape the real backend uses for unknown resource IDs.
func (b *Backend) handleGetReport(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "report not found: "+chi.URLParam(r, "id"))
}

func (b *Backend) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, true, "report deleted", nil)
}

// rotateLocked issues a fresh token pair. Caller holds b.mu.
func (b *Backend) rotateLocked() {
	b.tokenSerial++
	b.accessToken = signToken(b.tokenSerial, "access", 15*time.Minute)
	b.refreshToken = signToken(b.tokenSerial, "refresh", 7*24*time.Hour)
}

// tokenResponseLocked builds the login/refresh payload. Caller holds b.mu.
func (b *Backend) tokenResponseLocked(email string) map[string]any {
	return map[string]any{
		"accessToken":  b.accessToken,
		"refreshToken": b.refreshToken,
		"tokenType":    "Bearer",
		"expiresIn":    int64(900),
		"user": map[string]any{
			"id":    "user-1",
			"email": email,
			"name":  "Test Senior",
			"role":  "SENIOR",
		},
	}
}

func signToken(serial int, use string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub": "user-1",
		"use": use,
		"ser": serial,
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(backendSecret)
	if err != nil {
		panic(err)
	}
	return signed
}

// WriteData writes a success envelope with the given payload.
func WriteData(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, true, "ok", data)
}

// WriteError writes a failure envelope with the given message.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, false, message, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   success,
		"message":   message,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
