package services

import (
	"context"
	"net/url"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// DailyHealthMetrics is one day's aggregated health readings for a user.
// Optional readings are pointers so an absent reading survives a round trip
// as null rather than zero.
type DailyHealthMetrics struct {
	MetricID      string   `json:"metricId"`
	UserID        string   `json:"userId"`
	Date          string   `json:"date"` // YYYY-MM-DD
	Steps         *int     `json:"steps"`
	SleepHours    *float64 `json:"sleepHours"`
	HeartRateAvg  *int     `json:"heartRateAvg"`
	HeartRateMin  *int     `json:"heartRateMin"`
	HeartRateMax  *int     `json:"heartRateMax"`
	BloodPressure *string  `json:"bloodPressure"` // "120/80"
	WeightKg      *float64 `json:"weightKg"`
	BloodGlucose  *float64 `json:"bloodGlucose"`
	MoodScore     *int     `json:"moodScore"` // 1..5
	Notes         *string  `json:"notes"`
}

// MetricsUpsertRequest records readings for a single day. Nil fields leave
// the stored reading untouched.
type MetricsUpsertRequest struct {
	Date          string   `json:"date"` // YYYY-MM-DD
	Steps         *int     `json:"steps,omitempty"`
	SleepHours    *float64 `json:"sleepHours,omitempty"`
	HeartRateAvg  *int     `json:"heartRateAvg,omitempty"`
	BloodPressure *string  `json:"bloodPressure,omitempty"`
	WeightKg      *float64 `json:"weightKg,omitempty"`
	BloodGlucose  *float64 `json:"bloodGlucose,omitempty"`
	MoodScore     *int     `json:"moodScore,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// HealthMetricsService reads and records daily health metrics.
type HealthMetricsService struct {
	client *session.Client
}

// NewHealthMetricsService creates a HealthMetricsService over the shared
// session client.
func NewHealthMetricsService(client *session.Client) *HealthMetricsService {
	return &HealthMetricsService{client: client}
}

// Daily fetches the metrics recorded for one day. date is YYYY-MM-DD.
func (s *HealthMetricsService) Daily(ctx context.Context, date string) (DailyHealthMetrics, error) {
	q := url.Values{"date": {date}}
	resp, err := s.client.Get(ctx, "/v1/metrics/daily", q)
	if err != nil {
		return DailyHealthMetrics{}, err
	}
	return session.Unwrap[DailyHealthMetrics](resp, "failed to load daily metrics")
}

// Range fetches the metrics for an inclusive date range, newest first.
func (s *HealthMetricsService) Range(ctx context.Context, from, to string) ([]DailyHealthMetrics, error) {
	q := url.Values{"from": {from}, "to": {to}}
	resp, err := s.client.Get(ctx, "/v1/metrics", q)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]DailyHealthMetrics](resp, "failed to load metrics range")
}

// Record upserts the readings for req.Date and returns the stored day.
func (s *HealthMetricsService) Record(ctx context.Context, req MetricsUpsertRequest) (DailyHealthMetrics, error) {
	resp, err := s.client.Post(ctx, "/v1/metrics/daily", req)
	if err != nil {
		return DailyHealthMetrics{}, err
	}
	return session.Unwrap[DailyHealthMetrics](resp, "failed to record metrics")
}
