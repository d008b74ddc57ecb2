package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// Mission is a longer-running health goal, unlike the one-day action cards.
type Mission struct {
	MissionID   string     `json:"missionId"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Progress    int        `json:"progress"` // 0..100
	Completed   bool       `json:"completed"`
	StartDate   string     `json:"startDate"` // YYYY-MM-DD
	EndDate     string     `json:"endDate"`   // YYYY-MM-DD
	CompletedAt *time.Time `json:"completedAt"`
}

// MissionService reads and completes health missions.
type MissionService struct {
	client *session.Client
}

// NewMissionService creates a MissionService over the shared session client.
func NewMissionService(client *session.Client) *MissionService {
	return &MissionService{client: client}
}

// List returns the user's missions. includeCompleted keeps finished ones
// in the result.
func (s *MissionService) List(ctx context.Context, includeCompleted bool) ([]Mission, error) {
	var q url.Values
	if includeCompleted {
		q = url.Values{"includeCompleted": {"true"}}
	}
	resp, err := s.client.Get(ctx, "/v1/missions", q)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]Mission](resp, "failed to load missions")
}

// Complete marks a mission finished.
func (s *MissionService) Complete(ctx context.Context, missionID string) (Mission, error) {
	resp, err := s.client.Patch(ctx, "/v1/missions/"+missionID+"/complete", nil)
	if err != nil {
		return Mission{}, err
	}
	return session.Unwrap[Mission](resp, fmt.Sprintf("failed to complete mission %s", missionID))
}
