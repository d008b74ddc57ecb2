package testutil

import (
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// TestUser returns a user fixture with default values.
func TestUser() session.User {
	return session.User{
		ID:        "user-1",
		Email:     "senior@example.com",
		Name:      "Test Senior",
		Role:      session.RoleSenior,
		CreatedAt: TimePtr(time.Now()),
	}
}

// TestTokens returns a token response fixture carrying the given pair.
func TestTokens(access, refresh string) session.TokenResponse {
	return session.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    900,
		User:         TestUser(),
	}
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int.
func IntPtr(i int) *int {
	return &i
}
