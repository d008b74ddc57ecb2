package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/apilog"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

// Authentication endpoints. A 401 from one of these is a definitive answer,
// never a trigger for another refresh.
const (
	loginPath   = "/v1/auth/login"
	signupPath  = "/v1/auth/signup"
	refreshPath = "/v1/auth/refresh"
)

// DefaultTimeout bounds every request when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the API origin, e.g. "https://api.carelink.example/api".
	// Required.
	BaseURL string

	// Storage is the durable partition holding the session. Required.
	Storage storage.Storage

	// Timeout bounds each request, refresh calls included.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger emits request/response/error records. Defaults to a logger
	// with apilog.DefaultConfig.
	Logger *apilog.Logger

	// OnSessionExpired is invoked once per genuine session failure, after
	// the token store has been cleared. The web client redirects to the
	// login page here; a CLI might print a re-login hint. Optional.
	OnSessionExpired func()
}

// Response is a settled HTTP exchange. Body is fully read, so callers never
// deal with stream lifecycles.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// refreshOutcome is broadcast to every request queued behind a refresh.
// AccessToken is empty when the refresh failed.
type refreshOutcome struct {
	accessToken string
	err         error
}

// Client is the authenticated HTTP session client. Every outbound call goes
// through one pipeline: bearer token and correlation header attachment,
// request/response/error logging with masking, and refresh-on-401 with the
// single-flight guarantee: for N concurrent 401s exactly one refresh call
// is made, and every queued request replays with the new token or fails
// with the refresh error.
//
// A Client is safe for concurrent use. The refresh flag and pending queue
// are the only shared state beyond the token store, both owned here.
//
// Example:
//
//	client, err := session.New(session.Options{
//	    BaseURL: cfg.APIBaseURL,
//	    Storage: store,
//	    OnSessionExpired: func() { fmt.Println("Session expired, please log in again") },
//	})
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to create API client")
//	}
//	resp, err := client.Get(ctx, "/v1/users/me", nil)
type Client struct {
	baseURL string
	http    *http.Client
	// bare performs the refresh call itself, outside the pipeline, so a 401
	// on refresh cannot recurse into another refresh.
	bare *http.Client

	tokens      *TokenStore
	correlation *CorrelationID
	logger      *apilog.Logger

	onSessionExpired func()

	// Single-flight refresh state. refreshing is the REFRESHING flag of
	// the protocol; waiters is the pending queue, drained FIFO when the
	// in-flight refresh settles.
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome

	// termMu serializes session teardown so the expired callback fires
	// once per genuine failure even under concurrent 401s.
	termMu sync.Mutex
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if opts.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = apilog.New(apilog.DefaultConfig())
	}

	return &Client{
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		http:             &http.Client{Timeout: timeout},
		bare:             &http.Client{Timeout: timeout},
		tokens:           NewTokenStore(opts.Storage),
		correlation:      NewCorrelationID(opts.Storage),
		logger:           logger,
		onSessionExpired: opts.OnSessionExpired,
	}, nil
}

// Tokens exposes the session's token store for read access (current user,
// authentication state, token expiry). Writes stay inside the Client.
func (c *Client) Tokens() *TokenStore {
	return c.tokens
}

// CorrelationID returns the session's correlation identifier, the value
// sent as X-Request-ID on every request.
func (c *Client) CorrelationID() string {
	return c.correlation.Get()
}

// Logger returns the client's request logger, so callers can flip logging
// switches at runtime.
func (c *Client) Logger() *apilog.Logger {
	return c.logger
}

// Get issues a GET request through the session pipeline.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body through the session pipeline.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT request with a JSON body through the session pipeline.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

// Patch issues a PATCH request with a JSON body through the session pipeline.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

// Delete issues a DELETE request through the session pipeline.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do issues a request through the session pipeline. body, when non-nil, is
// marshaled to JSON. path is relative to the base URL and is also the value
// matched against the auth endpoints for the no-recursive-refresh rule.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	return c.do(ctx, method, path, query, payload, false)
}

// do runs one pass of the pipeline. retried is the per-request one-shot
// flag: a request that already replayed after a refresh is never queued
// again, it terminates the session instead.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, retried bool) (*Response, error) {
	requestID := c.correlation.Get()

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if len(payload) > 0 {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// The start time and correlation ID stay on this request's stack, so
	// concurrent requests never cross-contaminate timings.
	c.logger.Request(requestID, method, path, req.Header, query, payload)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		// No HTTP response: timeout, DNS, refused, cancelled. Never a
		// refresh trigger.
		elapsed := time.Since(start)
		c.logger.Error(requestID, method, path, err, 0, nil, elapsed)
		recordRequest(method, path, 0, elapsed)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	elapsed := time.Since(start)

	if readErr != nil {
		c.logger.Error(requestID, method, path, readErr, 0, nil, elapsed)
		recordRequest(method, path, 0, elapsed)
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}

	recordRequest(method, path, resp.StatusCode, elapsed)

	if resp.StatusCode < http.StatusBadRequest {
		c.logger.Response(requestID, method, path, resp.StatusCode, resp.Header, respBody, elapsed)
		return &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       respBody,
			Duration:   elapsed,
		}, nil
	}

	apiErr := newAPIError(resp.StatusCode, respBody)
	c.logger.Error(requestID, method, path, apiErr, resp.StatusCode, respBody, elapsed)

	if resp.StatusCode != http.StatusUnauthorized {
		// 4xx/5xx other than 401 surface directly; retry policy for those
		// belongs to callers.
		return nil, apiErr
	}
	if isAuthPath(path) {
		// The auth endpoints' own 401s are final answers.
		return nil, apiErr
	}

	return c.recoverUnauthorized(ctx, method, path, query, payload, retried, apiErr)
}

// recoverUnauthorized applies the refresh protocol to a 401 on a protected
// endpoint.
func (c *Client) recoverUnauthorized(ctx context.Context, method, path string, query url.Values, payload []byte, retried bool, cause *APIError) (*Response, error) {
	if retried {
		// The replay was rejected too: the refreshed token is no good.
		c.terminateSession("unauthorized after refresh")
		return nil, errors.Join(ErrSessionExpired, cause)
	}

	if c.tokens.RefreshToken() == "" {
		c.terminateSession("no refresh token")
		return nil, errors.Join(ErrSessionExpired, cause)
	}

	if _, err := c.awaitRefresh(ctx); err != nil {
		return nil, err
	}

	// Replay once with the retried flag set; the fresh token is read from
	// the store when the request is rebuilt.
	return c.do(ctx, method, path, query, payload, true)
}

// awaitRefresh ensures at most one refresh call is in flight. The first
// caller performs the refresh; every caller that arrives while it runs
// joins the pending queue and shares the outcome. The queue drains in
// arrival order.
func (c *Client) awaitRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case out := <-ch:
			return out.accessToken, out.err
		case <-ctx.Done():
			return "", fmt.Errorf("cancelled while awaiting token refresh: %w", ctx.Err())
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	token, err := c.refresh(ctx)
	if err != nil {
		// Refresh failure is fatal for the session. Clear before notifying
		// the queue so no queued caller can observe a stale token.
		c.terminateSession("token refresh failed")
		err = errors.Join(ErrSessionExpired, err)
	}

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	out := refreshOutcome{accessToken: token, err: err}
	for _, ch := range waiters {
		ch <- out
	}

	return token, err
}

// refresh exchanges the stored refresh token for a new token pair on the
// bare HTTP client and persists the result. Exactly one invocation runs at
// a time, guarded by awaitRefresh.
func (c *Client) refresh(ctx context.Context) (string, error) {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		// Lost a race with a logout between the 401 and the refresh.
		recordRefresh("failed")
		return "", fmt.Errorf("no refresh token available")
	}

	requestID := c.correlation.Get()
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		recordRefresh("failed")
		return "", fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		recordRefresh("failed")
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Request(requestID, http.MethodPost, refreshPath, req.Header, nil, payload)
	start := time.Now()

	resp, err := c.bare.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		c.logger.Error(requestID, http.MethodPost, refreshPath, err, 0, nil, elapsed)
		recordRequest(http.MethodPost, refreshPath, 0, elapsed)
		recordRefresh("failed")
		return "", fmt.Errorf("refresh request failed: %w", err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	elapsed := time.Since(start)
	recordRequest(http.MethodPost, refreshPath, resp.StatusCode, elapsed)

	if readErr != nil {
		c.logger.Error(requestID, http.MethodPost, refreshPath, readErr, 0, nil, elapsed)
		recordRefresh("failed")
		return "", fmt.Errorf("failed to read refresh response: %w", readErr)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp.StatusCode, respBody)
		c.logger.Error(requestID, http.MethodPost, refreshPath, apiErr, resp.StatusCode, respBody, elapsed)
		recordRefresh("failed")
		return "", apiErr
	}

	c.logger.Response(requestID, http.MethodPost, refreshPath, resp.StatusCode, resp.Header, respBody, elapsed)

	tokens, err := Unwrap[TokenResponse](&Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody, Duration: elapsed}, "token refresh failed")
	if err != nil {
		recordRefresh("failed")
		return "", err
	}
	if err := c.tokens.Set(tokens); err != nil {
		recordRefresh("failed")
		return "", err
	}

	recordRefresh("success")
	log.Info().
		Str("request_id", requestID).
		Str("user_id", tokens.User.ID).
		Msg("Access token refreshed")

	return tokens.AccessToken, nil
}

// terminateSession clears the token store and fires the session-expired
// callback. Teardown happens once per genuine session failure: concurrent
// 401s that all reach this point observe the already-empty store and skip.
// The empty-store check also covers a 401 on a session that was never
// established (no tokens stored at all): there is nothing to tear down and
// no session to expire, so the callback stays silent and the caller sees
// only the error.
func (c *Client) terminateSession(reason string) {
	c.termMu.Lock()
	defer c.termMu.Unlock()

	if c.tokens.AccessToken() == "" && c.tokens.RefreshToken() == "" {
		return
	}

	if err := c.tokens.Clear(); err != nil {
		log.Error().Err(err).Msg("Failed to clear session storage")
	}
	recordTermination()

	log.Warn().
		Str("request_id", c.correlation.Get()).
		Str("reason", reason).
		Msg("Session terminated")

	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// isAuthPath reports whether path is one of the authentication endpoints.
func isAuthPath(path string) bool {
	switch path {
	case loginPath, signupPath, refreshPath:
		return true
	}
	return false
}
