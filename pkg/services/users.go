package services

import (
	"context"
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// Gender of a user profile.
type Gender string

// Profile genders.
const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// ProfileResponse is the full user profile. Most fields are nullable on the
// wire: profiles are filled in gradually during onboarding.
type ProfileResponse struct {
	UserID             string       `json:"userId"`
	Email              string       `json:"email"`
	Name               *string      `json:"name"`
	PhoneNumber        *string      `json:"phoneNumber"`
	ProfileImageURL    *string      `json:"profileImageUrl"`
	Bio                *string      `json:"bio"`
	BirthDate          *string      `json:"birthDate"` // YYYY-MM-DD
	Age                *int         `json:"age"`
	Gender             *Gender      `json:"gender"`
	Role               session.Role `json:"role"`
	PrimaryConditions  *string      `json:"primaryConditions"`
	AccessibilityPrefs *string      `json:"accessibilityPrefs"`
	CreatedAt          *time.Time   `json:"createdAt"`
	UpdatedAt          *time.Time   `json:"updatedAt"`
}

// ProfileUpdateRequest carries the editable profile fields. Nil fields are
// omitted and left unchanged by the backend.
type ProfileUpdateRequest struct {
	Name               *string `json:"name,omitempty"`
	PhoneNumber        *string `json:"phoneNumber,omitempty"`
	BirthDate          *string `json:"birthDate,omitempty"` // YYYY-MM-DD
	Gender             *Gender `json:"gender,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	PrimaryConditions  *string `json:"primaryConditions,omitempty"`
	AccessibilityPrefs *string `json:"accessibilityPrefs,omitempty"`
}

// UserService accesses the authenticated user's profile.
type UserService struct {
	client *session.Client
}

// NewUserService creates a UserService over the shared session client.
func NewUserService(client *session.Client) *UserService {
	return &UserService{client: client}
}

// GetMe fetches the authenticated user's profile.
func (s *UserService) GetMe(ctx context.Context) (ProfileResponse, error) {
	resp, err := s.client.Get(ctx, "/v1/users/me", nil)
	if err != nil {
		return ProfileResponse{}, err
	}
	return session.Unwrap[ProfileResponse](resp, "failed to load profile")
}

// UpdateMe updates the authenticated user's profile and returns the
// resulting state.
func (s *UserService) UpdateMe(ctx context.Context, req ProfileUpdateRequest) (ProfileResponse, error) {
	resp, err := s.client.Put(ctx, "/v1/users/me", req)
	if err != nil {
		return ProfileResponse{}, err
	}
	return session.Unwrap[ProfileResponse](resp, "failed to save profile")
}
