package session_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/internal/testutil"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

// testClient wires a client to a fake backend over in-memory storage and
// counts session-expired callbacks.
type testClient struct {
	client  *session.Client
	backend *testutil.Backend
	store   *storage.Memory
	expired *atomic.Int32
}

func setupClient(t *testing.T) *testClient {
	t.Helper()

	backend := testutil.NewBackend(t)
	store := storage.NewMemory()
	expired := &atomic.Int32{}

	client, err := session.New(session.Options{
		BaseURL:          backend.URL(),
		Storage:          store,
		Timeout:          5 * time.Second,
		OnSessionExpired: func() { expired.Add(1) },
	})
	require.NoError(t, err)

	return &testClient{client: client, backend: backend, store: store, expired: expired}
}

// login authenticates against the fake backend and fails the test on error.
func (tc *testClient) login(t *testing.T) {
	t.Helper()
	_, err := tc.client.Login(context.Background(), session.LoginRequest{
		Email:    "senior@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := session.New(session.Options{Storage: storage.NewMemory()})
		assert.Error(t, err)
	})

	t.Run("rejects malformed base URL", func(t *testing.T) {
		_, err := session.New(session.Options{BaseURL: "not a url", Storage: storage.NewMemory()})
		assert.Error(t, err)
	})

	t.Run("requires storage", func(t *testing.T) {
		_, err := session.New(session.Options{BaseURL: "http://localhost:8080"})
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Run("persists issued tokens and user", func(t *testing.T) {
		tc := setupClient(t)

		tokens, err := tc.client.Login(context.Background(), session.LoginRequest{
			Email:    "senior@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)

		assert.Equal(t, tc.backend.AccessToken(), tokens.AccessToken)
		assert.Equal(t, tc.backend.AccessToken(), tc.client.Tokens().AccessToken())
		assert.Equal(t, tc.backend.RefreshToken(), tc.client.Tokens().RefreshToken())
		assert.True(t, tc.client.Tokens().Authenticated())

		user, ok := tc.client.Tokens().User()
		require.True(t, ok)
		assert.Equal(t, "senior@example.com", user.Email)
		assert.Equal(t, session.RoleSenior, user.Role)
	})

	t.Run("bad credentials surface as API error without refresh", func(t *testing.T) {
		tc := setupClient(t)

		_, err := tc.client.Login(context.Background(), session.LoginRequest{
			Email:    "senior@example.com",
			Password: "wrong-password",
		})
		require.Error(t, err)

		var apiErr *session.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 401, apiErr.Status)
		assert.Equal(t, "invalid credentials", apiErr.Message)
		assert.False(t, errors.Is(err, session.ErrSessionExpired))
		assert.Equal(t, 0, tc.backend.RefreshCalls())
		assert.Equal(t, int32(0), tc.expired.Load())
	})
}

func TestRequestPipeline(t *testing.T) {
	t.Run("attaches bearer token and correlation ID", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		_, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.NoError(t, err)

		reqs := tc.backend.Requests()
		last := reqs[len(reqs)-1]
		assert.Equal(t, "/v1/users/me", last.Path)
		assert.Equal(t, "Bearer "+tc.backend.AccessToken(), last.Authorization)
		assert.Equal(t, tc.client.CorrelationID(), last.RequestID)
	})

	t.Run("correlation ID is stable across requests", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		_, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.NoError(t, err)
		_, err = tc.client.Get(context.Background(), "/v1/actions/today", nil)
		require.NoError(t, err)

		reqs := tc.backend.Requests()
		require.GreaterOrEqual(t, len(reqs), 3)
		id := reqs[0].RequestID
		assert.NotEmpty(t, id)
		for _, r := range reqs {
			assert.Equal(t, id, r.RequestID)
		}
	})

	t.Run("encodes query parameters", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		resp, err := tc.client.Get(context.Background(), "/v1/echo", url.Values{"date": {"2026-09-01"}})
		require.NoError(t, err)

		out, err := session.Unwrap[map[string]string](resp, "echo failed")
		require.NoError(t, err)
		assert.Equal(t, "date=2026-09-01", out["query"])
	})

	t.Run("network failure is not a session failure", func(t *testing.T) {
		store := storage.NewMemory()
		var expired atomic.Int32
		client, err := session.New(session.Options{
			BaseURL:          "http://127.0.0.1:1", // nothing listens here
			Storage:          store,
			Timeout:          time.Second,
			OnSessionExpired: func() { expired.Add(1) },
		})
		require.NoError(t, err)

		_, err = client.Get(context.Background(), "/v1/users/me", nil)
		require.Error(t, err)

		var apiErr *session.APIError
		assert.False(t, errors.As(err, &apiErr))
		assert.False(t, errors.Is(err, session.ErrSessionExpired))
		assert.Equal(t, int32(0), expired.Load())
	})

	t.Run("non-401 errors surface directly", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		_, err := tc.client.Get(context.Background(), "/v1/does-not-exist", nil)
		require.Error(t, err)

		var apiErr *session.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
		assert.Equal(t, 0, tc.backend.RefreshCalls())
	})
}

func TestTokenRefresh(t *testing.T) {
	t.Run("expired token is refreshed once and the request replayed", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)
		oldAccess := tc.client.Tokens().AccessToken()

		tc.backend.ExpireAccess()

		resp, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		assert.Equal(t, 1, tc.backend.RefreshCalls())
		assert.NotEqual(t, oldAccess, tc.client.Tokens().AccessToken())
		assert.Equal(t, tc.backend.AccessToken(), tc.client.Tokens().AccessToken())
		assert.Equal(t, int32(0), tc.expired.Load())

		// The replay must carry the fresh token.
		reqs := tc.backend.Requests()
		last := reqs[len(reqs)-1]
		assert.Equal(t, "/v1/users/me", last.Path)
		assert.Equal(t, "Bearer "+tc.backend.AccessToken(), last.Authorization)
	})

	t.Run("concurrent 401s share a single refresh", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		release := tc.backend.HoldRefresh()
		tc.backend.ExpireAccess()

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = tc.client.Get(context.Background(), "/v1/users/me", nil)
			}(i)
		}

		// Wait until every request has been rejected and the one refresh is
		// in flight before letting it settle.
		require.Eventually(t, func() bool {
			me := 0
			for _, r := range tc.backend.Requests() {
				if r.Path == "/v1/users/me" {
					me++
				}
			}
			return me >= n && tc.backend.RefreshCalls() == 1
		}, 5*time.Second, 10*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		release()

		wg.Wait()
		for i, err := range errs {
			assert.NoError(t, err, "request %d", i)
		}
		assert.Equal(t, 1, tc.backend.RefreshCalls())
		assert.Equal(t, int32(0), tc.expired.Load())
	})

	t.Run("failed refresh terminates the session for every waiter", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		release := tc.backend.HoldRefresh()
		tc.backend.FailRefresh(401)
		tc.backend.ExpireAccess()

		const n = 4
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = tc.client.Get(context.Background(), "/v1/users/me", nil)
			}(i)
		}

		require.Eventually(t, func() bool {
			return tc.backend.RefreshCalls() == 1
		}, 5*time.Second, 10*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		release()

		wg.Wait()
		for i, err := range errs {
			assert.ErrorIs(t, err, session.ErrSessionExpired, "request %d", i)
		}
		assert.Equal(t, 1, tc.backend.RefreshCalls())
		assert.Equal(t, int32(1), tc.expired.Load(), "expired callback must fire exactly once")
		assert.False(t, tc.client.Tokens().Authenticated())
		assert.Empty(t, tc.client.Tokens().RefreshToken())
	})

	t.Run("401 without refresh token terminates immediately", func(t *testing.T) {
		tc := setupClient(t)

		// An access token with no refresh token, e.g. a partially cleared
		// session from an older client.
		require.NoError(t, tc.store.Set("auth.accessToken", "stale-token"))

		_, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.ErrorIs(t, err, session.ErrSessionExpired)

		assert.Equal(t, 0, tc.backend.RefreshCalls())
		assert.Equal(t, int32(1), tc.expired.Load())
		assert.False(t, tc.client.Tokens().Authenticated())
	})

	t.Run("401 with no session at all stays silent", func(t *testing.T) {
		tc := setupClient(t)

		// Never logged in: no tokens stored, so there is no session to
		// expire and the callback must not fire.
		_, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.ErrorIs(t, err, session.ErrSessionExpired)

		assert.Equal(t, 0, tc.backend.RefreshCalls())
		assert.Equal(t, int32(0), tc.expired.Load())
	})

	t.Run("replay rejected after refresh terminates without a second refresh", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		// First attempt and its replay both rejected; the refresh between
		// them succeeds.
		tc.backend.RejectProtected(2)

		_, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.ErrorIs(t, err, session.ErrSessionExpired)

		assert.Equal(t, 1, tc.backend.RefreshCalls())
		assert.Equal(t, int32(1), tc.expired.Load())
		assert.False(t, tc.client.Tokens().Authenticated())
	})

	t.Run("session works again after re-login", func(t *testing.T) {
		tc := setupClient(t)
		tc.login(t)

		tc.backend.FailRefresh(401)
		tc.backend.ExpireAccess()
		_, err := tc.client.Get(context.Background(), "/v1/users/me", nil)
		require.ErrorIs(t, err, session.ErrSessionExpired)

		tc.backend.FailRefresh(0)
		tc.login(t)
		_, err = tc.client.Get(context.Background(), "/v1/users/me", nil)
		assert.NoError(t, err)
	})
}

func TestLogout(t *testing.T) {
	tc := setupClient(t)
	tc.login(t)
	id := tc.client.CorrelationID()

	require.NoError(t, tc.client.Logout())

	assert.False(t, tc.client.Tokens().Authenticated())
	assert.Empty(t, tc.client.Tokens().RefreshToken())
	_, ok := tc.client.Tokens().User()
	assert.False(t, ok)

	// Logout discards credentials, not the session identity.
	assert.Equal(t, id, tc.client.CorrelationID())
	assert.Equal(t, int32(0), tc.expired.Load(), "voluntary logout is not a session failure")
}

func TestSignup(t *testing.T) {
	tc := setupClient(t)

	user, err := tc.client.Signup(context.Background(), session.SignupRequest{
		Email:    "new@example.com",
		Password: "correct-horse",
		Name:     "New User",
		Agreements: session.Agreements{
			TermsService:  true,
			PrivacyPolicy: true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	// Signup does not log the user in.
	assert.False(t, tc.client.Tokens().Authenticated())
}
