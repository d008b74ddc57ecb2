package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/internal/testutil"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenStore(t *testing.T) {
	t.Run("set and read back", func(t *testing.T) {
		store := session.NewTokenStore(storage.NewMemory())

		require.NoError(t, store.Set(testutil.TestTokens("a1", "r1")))

		assert.Equal(t, "a1", store.AccessToken())
		assert.Equal(t, "r1", store.RefreshToken())
		assert.True(t, store.Authenticated())

		user, ok := store.User()
		require.True(t, ok)
		assert.Equal(t, "senior@example.com", user.Email)
	})

	t.Run("empty store", func(t *testing.T) {
		store := session.NewTokenStore(storage.NewMemory())

		assert.Equal(t, "", store.AccessToken())
		assert.Equal(t, "", store.RefreshToken())
		assert.False(t, store.Authenticated())
		_, ok := store.User()
		assert.False(t, ok)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		store := session.NewTokenStore(storage.NewMemory())
		require.NoError(t, store.Set(testutil.TestTokens("a1", "r1")))

		require.NoError(t, store.Clear())

		assert.False(t, store.Authenticated())
		assert.Equal(t, "", store.RefreshToken())
		_, ok := store.User()
		assert.False(t, ok)
	})

	t.Run("corrupt stored user is treated as absent", func(t *testing.T) {
		mem := storage.NewMemory()
		store := session.NewTokenStore(mem)
		require.NoError(t, mem.Set("auth.user", "{not json"))

		_, ok := store.User()
		assert.False(t, ok)
	})

	t.Run("session resumes from a shared partition", func(t *testing.T) {
		mr := testutil.NewMiniRedis(t)

		first, err := storage.NewRedis(testutil.NewRedisClient(t, mr), "carelink:session:")
		require.NoError(t, err)
		require.NoError(t, session.NewTokenStore(first).Set(testutil.TestTokens("a1", "r1")))

		// A second process opening the same partition sees the session.
		second, err := storage.NewRedis(testutil.NewRedisClient(t, mr), "carelink:session:")
		require.NoError(t, err)
		resumed := session.NewTokenStore(second)
		assert.Equal(t, "a1", resumed.AccessToken())
		assert.Equal(t, "r1", resumed.RefreshToken())
	})
}

func TestAccessTokenExpiry(t *testing.T) {
	t.Run("reads exp claim without verification", func(t *testing.T) {
		store := session.NewTokenStore(storage.NewMemory())
		expiresAt := time.Now().Add(15 * time.Minute).Truncate(time.Second)
		require.NoError(t, store.Set(testutil.TestTokens(signedToken(t, expiresAt), "r1")))

		exp, ok := store.AccessTokenExpiry()
		require.True(t, ok)
		assert.True(t, exp.Equal(expiresAt))
	})

	t.Run("absent token", func(t *testing.T) {
		store := session.NewTokenStore(storage.NewMemory())

		_, ok := store.AccessTokenExpiry()
		assert.False(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		store := session.NewTokenStore(storage.NewMemory())
		require.NoError(t, store.Set(testutil.TestTokens("not-a-jwt", "r1")))

		_, ok := store.AccessTokenExpiry()
		assert.False(t, ok)
	})
}
