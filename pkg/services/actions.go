package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// ActionStatus is the lifecycle state of an action card.
type ActionStatus string

// Action card states.
const (
	ActionPending   ActionStatus = "PENDING"
	ActionCompleted ActionStatus = "COMPLETED"
	ActionSkipped   ActionStatus = "SKIPPED"
)

// ActionCard is one suggested daily activity, such as a walk or a
// medication reminder.
type ActionCard struct {
	ActionID    string       `json:"actionId"`
	UserID      string       `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Status      ActionStatus `json:"status"`
	Date        string       `json:"date"` // YYYY-MM-DD
	CompletedAt *time.Time   `json:"completedAt"`
}

// ActionStats is completion statistics over a recent window.
type ActionStats struct {
	TotalActions   int     `json:"totalActions"`
	CompletedCount int     `json:"completedCount"`
	SkippedCount   int     `json:"skippedCount"`
	CompletionRate float64 `json:"completionRate"` // 0..1
	StreakDays     int     `json:"streakDays"`
}

// ActionService reads and updates daily action cards.
type ActionService struct {
	client *session.Client
}

// NewActionService creates an ActionService over the shared session client.
func NewActionService(client *session.Client) *ActionService {
	return &ActionService{client: client}
}

// Today returns the action cards scheduled for today.
func (s *ActionService) Today(ctx context.Context) ([]ActionCard, error) {
	resp, err := s.client.Get(ctx, "/v1/actions/today", nil)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]ActionCard](resp, "failed to load today's actions")
}

// Complete marks an action card done.
func (s *ActionService) Complete(ctx context.Context, actionID string) (ActionCard, error) {
	resp, err := s.client.Post(ctx, "/v1/actions/"+actionID+"/complete", nil)
	if err != nil {
		return ActionCard{}, err
	}
	return session.Unwrap[ActionCard](resp, fmt.Sprintf("failed to complete action %s", actionID))
}

// Skip marks an action card skipped for today.
func (s *ActionService) Skip(ctx context.Context, actionID string) (ActionCard, error) {
	resp, err := s.client.Post(ctx, "/v1/actions/"+actionID+"/skip", nil)
	if err != nil {
		return ActionCard{}, err
	}
	return session.Unwrap[ActionCard](resp, fmt.Sprintf("failed to skip action %s", actionID))
}

// Stats returns completion statistics for the authenticated user.
func (s *ActionService) Stats(ctx context.Context) (ActionStats, error) {
	resp, err := s.client.Get(ctx, "/v1/actions/stats", nil)
	if err != nil {
		return ActionStats{}, err
	}
	return session.Unwrap[ActionStats](resp, "failed to load action stats")
}
