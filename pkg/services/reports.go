package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// ReportPeriod is the span a health report covers.
type ReportPeriod string

// Report periods.
const (
	PeriodWeekly  ReportPeriod = "WEEKLY"
	PeriodMonthly ReportPeriod = "MONTHLY"
)

// ReportMetrics is the aggregated numbers inside a report.
type ReportMetrics struct {
	AvgSteps        *int     `json:"avgSteps"`
	AvgSleepHours   *float64 `json:"avgSleepHours"`
	AvgHeartRate    *int     `json:"avgHeartRate"`
	AvgMoodScore    *float64 `json:"avgMoodScore"`
	ActiveDays      int      `json:"activeDays"`
	MissionsDone    int      `json:"missionsDone"`
	ActionsComplete int      `json:"actionsComplete"`
}

// HealthReport is a generated periodic summary of a user's health data.
type HealthReport struct {
	ReportID  string        `json:"reportId"`
	UserID    string        `json:"userId"`
	Period    ReportPeriod  `json:"period"`
	StartDate string        `json:"startDate"` // YYYY-MM-DD
	EndDate   string        `json:"endDate"`   // YYYY-MM-DD
	Summary   string        `json:"summary"`
	Metrics   ReportMetrics `json:"metrics"`
	CreatedAt time.Time     `json:"createdAt"`
}

// GenerateReportRequest asks the backend to build a report for a period
// ending on EndDate. An empty EndDate means today.
type GenerateReportRequest struct {
	Period  ReportPeriod `json:"period"`
	EndDate string       `json:"endDate,omitempty"` // YYYY-MM-DD
}

// ReportService lists, generates, and deletes health reports.
type ReportService struct {
	client *session.Client
}

// NewReportService creates a ReportService over the shared session client.
func NewReportService(client *session.Client) *ReportService {
	return &ReportService{client: client}
}

// List returns the authenticated user's reports, newest first. limit <= 0
// leaves paging to the backend default.
func (s *ReportService) List(ctx context.Context, limit int) ([]HealthReport, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	resp, err := s.client.Get(ctx, "/v1/reports", q)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]HealthReport](resp, "failed to load reports")
}

// Get fetches a single report by id.
func (s *ReportService) Get(ctx context.Context, reportID string) (HealthReport, error) {
	resp, err := s.client.Get(ctx, "/v1/reports/"+reportID, nil)
	if err != nil {
		return HealthReport{}, err
	}
	return session.Unwrap[HealthReport](resp, fmt.Sprintf("failed to load report %s", reportID))
}

// Generate builds a new report server-side and returns it.
func (s *ReportService) Generate(ctx context.Context, req GenerateReportRequest) (HealthReport, error) {
	resp, err := s.client.Post(ctx, "/v1/reports/generate", req)
	if err != nil {
		return HealthReport{}, err
	}
	return session.Unwrap[HealthReport](resp, "failed to generate report")
}

// Delete removes a report. The backend returns no payload, only the
// envelope, so only the success flag is checked.
func (s *ReportService) Delete(ctx context.Context, reportID string) error {
	resp, err := s.client.Delete(ctx, "/v1/reports/"+reportID)
	if err != nil {
		return err
	}
	return session.CheckEnvelope(resp, fmt.Sprintf("failed to delete report %s", reportID))
}
