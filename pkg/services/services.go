// Package services provides typed wrappers over the CareLink backend API:
// user profile, onboarding, daily health metrics, reports, the family
// board, action cards, device/portal integration, and missions. Each
// service holds the shared session client, so auth headers, correlation
// IDs, token refresh and request logging come for free; services only
// describe endpoints, payloads and envelope handling.
//
// All endpoints respond with the standard envelope
// {success, message, data, timestamp}; helpers in pkg/session unwrap it and
// turn success=false into an error carrying the backend message.
package services

import "github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"

// Services bundles one instance of every API service over a shared client.
type Services struct {
	Users         *UserService
	Onboarding    *OnboardingService
	HealthMetrics *HealthMetricsService
	Reports       *ReportService
	FamilyBoard   *FamilyBoardService
	Actions       *ActionService
	Integration   *IntegrationService
	Missions      *MissionService
}

// New builds the full service bundle.
func New(client *session.Client) *Services {
	return &Services{
		Users:         NewUserService(client),
		Onboarding:    NewOnboardingService(client),
		HealthMetrics: NewHealthMetricsService(client),
		Reports:       NewReportService(client),
		FamilyBoard:   NewFamilyBoardService(client),
		Actions:       NewActionService(client),
		Integration:   NewIntegrationService(client),
		Missions:      NewMissionService(client),
	}
}
