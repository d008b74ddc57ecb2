package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

// DeviceProvider is an external health data source.
type DeviceProvider string

// Supported device providers.
const (
	ProviderSamsungHealth DeviceProvider = "SAMSUNG_HEALTH"
	ProviderAppleHealth   DeviceProvider = "APPLE_HEALTH"
	ProviderFitbit        DeviceProvider = "FITBIT"
)

// DeviceLink is the connection state between a user and a provider.
type DeviceLink struct {
	LinkID     string         `json:"linkId"`
	UserID     string         `json:"userId"`
	Provider   DeviceProvider `json:"provider"`
	Connected  bool           `json:"connected"`
	LastSyncAt *time.Time     `json:"lastSyncAt"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Consent records whether a user allowed a data category to be synced.
type Consent struct {
	Category  string     `json:"category"` // steps, sleep, heart_rate, ...
	Granted   bool       `json:"granted"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// IntegrationService manages links to external health data providers and
// the consents that gate what they may sync.
type IntegrationService struct {
	client *session.Client
}

// NewIntegrationService creates an IntegrationService over the shared
// session client.
func NewIntegrationService(client *session.Client) *IntegrationService {
	return &IntegrationService{client: client}
}

// Links lists the user's device links, connected or not.
func (s *IntegrationService) Links(ctx context.Context) ([]DeviceLink, error) {
	resp, err := s.client.Get(ctx, "/v1/integration/links", nil)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]DeviceLink](resp, "failed to load device links")
}

// Connect links a provider to the user's account.
func (s *IntegrationService) Connect(ctx context.Context, provider DeviceProvider) (DeviceLink, error) {
	resp, err := s.client.Post(ctx, "/v1/integration/links", map[string]DeviceProvider{"provider": provider})
	if err != nil {
		return DeviceLink{}, err
	}
	return session.Unwrap[DeviceLink](resp, fmt.Sprintf("failed to connect %s", provider))
}

// Disconnect removes a provider link.
func (s *IntegrationService) Disconnect(ctx context.Context, linkID string) error {
	resp, err := s.client.Delete(ctx, "/v1/integration/links/"+linkID)
	if err != nil {
		return err
	}
	return session.CheckEnvelope(resp, "failed to disconnect device")
}

// Sync asks the backend to pull fresh data from a linked provider now.
func (s *IntegrationService) Sync(ctx context.Context, linkID string) (DeviceLink, error) {
	resp, err := s.client.Post(ctx, "/v1/integration/links/"+linkID+"/sync", nil)
	if err != nil {
		return DeviceLink{}, err
	}
	return session.Unwrap[DeviceLink](resp, "failed to sync device")
}

// Consents returns the user's per-category sync consents.
func (s *IntegrationService) Consents(ctx context.Context) ([]Consent, error) {
	resp, err := s.client.Get(ctx, "/v1/integration/consents", nil)
	if err != nil {
		return nil, err
	}
	return session.Unwrap[[]Consent](resp, "failed to load consents")
}

// SetConsent grants or revokes sync consent for one data category.
func (s *IntegrationService) SetConsent(ctx context.Context, category string, granted bool) (Consent, error) {
	body := map[string]any{"category": category, "granted": granted}
	resp, err := s.client.Put(ctx, "/v1/integration/consents", body)
	if err != nil {
		return Consent{}, err
	}
	return session.Unwrap[Consent](resp, "failed to update consent")
}
