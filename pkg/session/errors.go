package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks errors that terminated the session: the refresh
// token was absent, the refresh call failed, or a request was rejected again
// after a successful refresh. By the time a caller observes this error the
// token store has been cleared and the session-expired callback has fired.
//
// Match with errors.Is:
//
//	if errors.Is(err, session.ErrSessionExpired) {
//	    // send the user back to login
//	}
var ErrSessionExpired = errors.New("session expired")

// APIError is an HTTP error response from the backend. Message carries the
// backend-provided message when the body followed the standard envelope,
// otherwise the HTTP status text. Body keeps the raw response for callers
// that need more than the message.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %d %s", e.Status, e.Message)
}

// newAPIError builds an APIError from a failed response, pulling the
// message out of the standard envelope when the body parses as one.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: http.StatusText(status),
		Body:    body,
	}

	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		apiErr.Message = env.Message
	}

	return apiErr
}

// EnvelopeError is a response that arrived with HTTP success but reported
// failure in the standard envelope: success=false or a missing data field.
// Message is the backend message, or the caller-supplied fallback when the
// backend sent none.
type EnvelopeError struct {
	Message string
}

// Error implements the error interface.
func (e *EnvelopeError) Error() string {
	return e.Message
}
