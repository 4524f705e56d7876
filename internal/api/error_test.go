package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		kind    Kind
		message string
	}{
		{
			name:    "401 maps to authentication",
			status:  http.StatusUnauthorized,
			body:    nil,
			kind:    KindAuthentication,
			message: msgInvalidCredentials,
		},
		{
			name:    "400 maps to validation with backend message",
			status:  http.StatusBadRequest,
			body:    []byte(`{"message":"quantity must be positive"}`),
			kind:    KindValidation,
			message: "quantity must be positive",
		},
		{
			name:    "404 without message keeps stable copy",
			status:  http.StatusNotFound,
			body:    []byte(`{"error":"not found"}`),
			kind:    KindValidation,
			message: msgRequestRejected,
		},
		{
			name:    "500 ignores body details",
			status:  http.StatusInternalServerError,
			body:    []byte(`{"message":"panic: nil pointer"}`),
			kind:    KindServer,
			message: msgServerError,
		},
		{
			name:    "503 maps to server",
			status:  http.StatusServiceUnavailable,
			body:    nil,
			kind:    KindServer,
			message: msgServerError,
		},
		{
			name:    "odd status falls back to generic",
			status:  http.StatusPermanentRedirect,
			body:    nil,
			kind:    KindServer,
			message: msgGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusError(tt.status, tt.body)

			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	authErr := &Error{Kind: KindAuthentication, Message: msgInvalidCredentials}

	assert.True(t, IsAuthentication(authErr))
	assert.False(t, IsConnectivity(authErr))
	assert.False(t, IsValidation(authErr))
	assert.False(t, IsServer(authErr))

	// predicates see through wrapping
	wrapped := wrapErr{inner: authErr}
	assert.True(t, IsAuthentication(wrapped))

	assert.False(t, IsAuthentication(errors.New("plain")))
	assert.False(t, IsAuthentication(nil))
}

type wrapErr struct{ inner error }

func (w wrapErr) Error() string { return "wrapped: " + w.inner.Error() }
func (w wrapErr) Unwrap() error { return w.inner }

func TestConnectivityError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:9999: connect: connection refused")
	err := connectivityError(cause)

	assert.Equal(t, KindConnectivity, err.Kind)
	assert.Equal(t, msgOffline, err.Message)
	assert.True(t, errors.Is(err, cause))
}
