// Package session implements the authenticated HTTP session layer of the
// CareLink client SDK: a single request pipeline that attaches bearer
// tokens and a per-session correlation ID, refreshes an expired access
// token exactly once while replaying every request queued behind the
// refresh, and logs each request/response/error with sensitive fields
// masked.
//
// The package owns the only mutable session state in the SDK: the token
// store and the refresh flag. Nothing outside this package writes tokens.
package session

import "time"

// Role is the backend user role.
type Role string

// Backend roles.
const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleSenior    Role = "SENIOR"
	RoleCaregiver Role = "CAREGIVER"
)

// User is the identity the backend returns with a token pair and from
// profile endpoints. CreatedAt is nullable on the wire.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt"`
}

// TokenResponse is the token pair issued by the login and refresh
// endpoints. TokenType is always "Bearer"; ExpiresIn is the access token
// lifetime in seconds.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         User   `json:"user"`
}

// LoginRequest is the credentials payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Agreements records the consent checkboxes collected at signup.
type Agreements struct {
	TermsService     bool `json:"termsService"`
	PrivacyPolicy    bool `json:"privacyPolicy"`
	MarketingConsent bool `json:"marketingConsent"`
}

// SignupRequest is the registration payload for the signup endpoint.
// Role is optional; the backend defaults it.
type SignupRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Name       string     `json:"name"`
	Role       Role       `json:"role,omitempty"`
	Agreements Agreements `json:"agreements"`
}
