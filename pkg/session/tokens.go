package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

// Storage keys for the persisted session. Fixed so that any process opening
// the same storage partition resumes the same session, the way a reloaded
// page resumes from localStorage.
const (
	keyAccessToken  = "auth.accessToken"
	keyRefreshToken = "auth.refreshToken"
	keyUser         = "auth.user"
)

// TokenStore persists the access/refresh token pair and the authenticated
// user in durable storage. Reads are synchronous and never touch the
// network; an empty store at any point is a normal condition (fresh tab,
// logged-out session).
//
// Only the session Client writes to the store. Application code reads via
// User and Authenticated.
type TokenStore struct {
	store storage.Storage
}

// NewTokenStore wraps a storage partition.
func NewTokenStore(store storage.Storage) *TokenStore {
	return &TokenStore{store: store}
}

// Set persists a freshly issued token pair and its user. Partial writes are
// surfaced as errors; callers treat a failed Set as a failed login/refresh.
func (s *TokenStore) Set(t TokenResponse) error {
	if err := s.store.Set(keyAccessToken, t.AccessToken); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := s.store.Set(keyRefreshToken, t.RefreshToken); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}

	raw, err := json.Marshal(t.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.store.Set(keyUser, string(raw)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	return nil
}

// AccessToken returns the stored access token, or "" when absent.
func (s *TokenStore) AccessToken() string {
	v, _ := s.store.Get(keyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *TokenStore) RefreshToken() string {
	v, _ := s.store.Get(keyRefreshToken)
	return v
}

// User returns the stored user identity and whether one is present.
// A corrupt stored user is treated as absent.
func (s *TokenStore) User() (User, bool) {
	raw, ok := s.store.Get(keyUser)
	if !ok {
		return User{}, false
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Warn().Err(err).Msg("Stored user is corrupt, ignoring")
		return User{}, false
	}
	return u, true
}

// Authenticated reports whether an access token is present. It says nothing
// about token validity; an expired token is still "authenticated" until the
// backend rejects it and the refresh protocol settles the matter.
func (s *TokenStore) Authenticated() bool {
	return s.AccessToken() != ""
}

// Clear removes the whole session atomically with respect to readers of
// this store: after Clear returns no stale token can be observed.
func (s *TokenStore) Clear() error {
	if err := s.store.Delete(keyAccessToken, keyRefreshToken, keyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// AccessTokenExpiry inspects the stored access token's exp claim without
// verifying the signature (the client holds no signing key) and returns the
// expiry time. Returns false when no token is stored, the token is not a
// JWT, or it carries no expiry. Useful for logging and for callers that
// want to refresh proactively.
func (s *TokenStore) AccessTokenExpiry() (time.Time, bool) {
	raw := s.AccessToken()
	if raw == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
