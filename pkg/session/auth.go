package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Auth operations live on the Client because the token store has a single
// writer: login and refresh populate it, logout and session termination
// clear it. Everything else in the SDK only reads.

// Login exchanges credentials for a token pair and persists the session.
// The returned TokenResponse includes the authenticated user.
//
// Example:
//
//	tokens, err := client.Login(ctx, session.LoginRequest{
//	    Email:    "senior@example.com",
//	    Password: password,
//	})
//	if err != nil {
//	    return fmt.Errorf("login failed: %w", err)
//	}
//	fmt.Println("Welcome,", tokens.User.Name)
func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	resp, err := c.Post(ctx, loginPath, req)
	if err != nil {
		return TokenResponse{}, err
	}

	tokens, err := Unwrap[TokenResponse](resp, "login failed")
	if err != nil {
		return TokenResponse{}, err
	}

	if err := c.tokens.Set(tokens); err != nil {
		return TokenResponse{}, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Info().
		Str("request_id", c.correlation.Get()).
		Str("user_id", tokens.User.ID).
		Str("role", string(tokens.User.Role)).
		Msg("Logged in")

	return tokens, nil
}

// Signup registers a new account. It does not log the user in; the backend
// returns the created user and the caller follows up with Login.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, error) {
	resp, err := c.Post(ctx, signupPath, req)
	if err != nil {
		return User{}, err
	}
	return Unwrap[User](resp, "signup failed")
}

// Logout clears the persisted session. It is a local operation, mirroring
// the web client: the backend invalidates refresh tokens by rotation, so
// discarding ours is sufficient. The session-expired callback is not fired;
// this is a deliberate logout, not a failure.
func (c *Client) Logout() error {
	user, _ := c.tokens.User()
	if err := c.tokens.Clear(); err != nil {
		return err
	}

	log.Info().
		Str("user_id", user.ID).
		Msg("Logged out")

	return nil
}
