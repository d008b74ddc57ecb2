package session

import (
	"encoding/json"
	"fmt"
)

// Envelope is the standard response wrapper every backend endpoint uses.
// Data is left raw so callers can decode it into their own types.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// Unwrap decodes the standard envelope from a response body and returns the
// data payload. success=false or a missing data field yields an
// EnvelopeError carrying the backend message, or fallback when the backend
// sent none.
//
// Example:
//
//	resp, err := client.Get(ctx, "/v1/users/me", nil)
//	if err != nil {
//	    return ProfileResponse{}, err
//	}
//	return session.Unwrap[ProfileResponse](resp, "failed to load profile")
func Unwrap[T any](resp *Response, fallback string) (T, error) {
	var zero T

	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    *T     `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return zero, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if !env.Success || env.Data == nil {
		return zero, &EnvelopeError{Message: envelopeMessage(env.Message, fallback)}
	}
	return *env.Data, nil
}

// CheckEnvelope verifies a data-less envelope (ApiResponse<Void> on the
// backend): only success is required.
func CheckEnvelope(resp *Response, fallback string) error {
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if !env.Success {
		return &EnvelopeError{Message: envelopeMessage(env.Message, fallback)}
	}
	return nil
}

func envelopeMessage(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
