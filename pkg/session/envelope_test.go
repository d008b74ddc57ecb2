package session_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
)

func TestUnwrap(t *testing.T) {
	t.Run("returns the data payload on success", func(t *testing.T) {
		resp := &session.Response{
			StatusCode: 200,
			Body:       []byte(`{"success":true,"message":"ok","data":{"id":"u1","email":"a@b.c"},"timestamp":"2026-09-01T00:00:00Z"}`),
		}

		user, err := session.Unwrap[session.User](resp, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "a@b.c", user.Email)
	})

	t.Run("success=false yields the backend message", func(t *testing.T) {
		resp := &session.Response{
			StatusCode: 200,
			Body:       []byte(`{"success":false,"message":"profile incomplete"}`),
		}

		_, err := session.Unwrap[session.User](resp, "fallback")
		require.Error(t, err)

		var envErr *session.EnvelopeError
		require.ErrorAs(t, err, &envErr)
		assert.Equal(t, "profile incomplete", envErr.Message)
	})

	t.Run("missing data falls back to the caller message", func(t *testing.T) {
		resp := &session.Response{
			StatusCode: 200,
			Body:       []byte(`{"success":true,"message":""}`),
		}

		_, err := session.Unwrap[session.User](resp, "failed to load profile")
		require.Error(t, err)
		assert.EqualError(t, err, "failed to load profile")
	})

	t.Run("non-envelope body is a decode error", func(t *testing.T) {
		resp := &session.Response{StatusCode: 200, Body: []byte("<html>")}

		_, err := session.Unwrap[session.User](resp, "fallback")
		require.Error(t, err)

		var envErr *session.EnvelopeError
		assert.False(t, errors.As(err, &envErr))
		assert.Contains(t, err.Error(), "failed to decode response envelope")
	})
}

func TestCheckEnvelope(t *testing.T) {
	t.Run("success passes", func(t *testing.T) {
		resp := &session.Response{
			StatusCode: 200,
			Body:       []byte(`{"success":true,"message":"deleted"}`),
		}
		assert.NoError(t, session.CheckEnvelope(resp, "fallback"))
	})

	t.Run("failure carries the message", func(t *testing.T) {
		resp := &session.Response{
			StatusCode: 200,
			Body:       []byte(`{"success":false,"message":"not yours"}`),
		}
		err := session.CheckEnvelope(resp, "fallback")
		assert.EqualError(t, err, "not yours")
	})
}
