package services

import (
	"context"
	"fmt"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// OnboardingStep identifies one screen of the onboarding flow.
type OnboardingStep string

// Onboarding steps in flow order.
const (
	StepBasicInfo     OnboardingStep = "BASIC_INFO"
	StepHealthProfile OnboardingStep = "HEALTH_PROFILE"
	StepAccessibility OnboardingStep = "ACCESSIBILITY"
	StepFamilyInvite  OnboardingStep = "FAMILY_INVITE"
	StepComplete      OnboardingStep = "COMPLETE"
)

// OnboardingStatus is the server-side progress of the onboarding flow.
type OnboardingStatus struct {
	OnboardingID string         `json:"onboardingId"`
	UserID       string         `json:"userId"`
	CurrentStep  OnboardingStep `json:"currentStep"`
	Completed    bool           `json:"completed"`
	StartedAt    string         `json:"startedAt"`
	CompletedAt  *string        `json:"completedAt"`
}

// StepRequest submits the answers collected on a single onboarding step.
// Answers is a free-form map because each step carries different fields.
type StepRequest struct {
	Step    OnboardingStep `json:"step"`
	Answers map[string]any `json:"answers"`
}

// OnboardingService drives the first-run onboarding flow.
type OnboardingService struct {
	client *session.Client
}

// NewOnboardingService creates an OnboardingService over the shared
// session client.
func NewOnboardingService(client *session.Client) *OnboardingService {
	return &OnboardingService{client: client}
}

// Start begins (or resumes) onboarding for the authenticated user.
func (s *OnboardingService) Start(ctx context.Context) (OnboardingStatus, error) {
	resp, err := s.client.Post(ctx, "/v1/onboarding/start", nil)
	if err != nil {
		return OnboardingStatus{}, err
	}
	return session.Unwrap[OnboardingStatus](resp, "failed to start onboarding")
}

// Status returns the current onboarding progress.
func (s *OnboardingService) Status(ctx context.Context) (OnboardingStatus, error) {
	resp, err := s.client.Get(ctx, "/v1/onboarding/status", nil)
	if err != nil {
		return OnboardingStatus{}, err
	}
	return session.Unwrap[OnboardingStatus](resp, "failed to load onboarding status")
}

// SubmitStep records the answers for one step and returns the advanced
// progress state.
func (s *OnboardingService) SubmitStep(ctx context.Context, req StepRequest) (OnboardingStatus, error) {
	resp, err := s.client.Post(ctx, "/v1/onboarding/step", req)
	if err != nil {
		return OnboardingStatus{}, err
	}
	return session.Unwrap[OnboardingStatus](resp, fmt.Sprintf("failed to submit step %s", req.Step))
}

// Complete marks onboarding as finished.
func (s *OnboardingService) Complete(ctx context.Context) (OnboardingStatus, error) {
	resp, err := s.client.Post(ctx, "/v1/onboarding/complete", nil)
	if err != nil {
		return OnboardingStatus{}, err
	}
	return session.Unwrap[OnboardingStatus](resp, "failed to complete onboarding")
}
