package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a normalized pipeline error. Upstream layers branch on
// kinds, never on transport status codes.
type Kind string

const (
	// -- Transport --
	KindConnectivity Kind = "connectivity"

	// -- HTTP status classes --
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindServer         Kind = "server"
)

// Default user-facing messages, used when the response body carries none.
const (
	msgOffline            = "cannot reach the server, check your connection"
	msgInvalidCredentials = "invalid username or password"
	msgServerError        = "server error, please try again later"
	msgRequestRejected    = "request could not be processed"
	msgGeneric            = "request failed"
	msgMalformedResponse  = "malformed server response"
)

// Error is the single error shape every non-2xx response and transport
// failure is normalized into at the pipeline boundary.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// connectivityError wraps a transport-level failure. Offline detection takes
// priority over everything else: there is no status to map.
func connectivityError(err error) *Error {
	return &Error{
		Kind:    KindConnectivity,
		Message: msgOffline,
		Err:     err,
	}
}

// statusError maps a non-2xx response to the taxonomy. Validation failures
// surface the server's own {message} when it provides one; 5xx bodies are
// never shown to users, and unmapped codes fall back to one generic message.
func statusError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: body}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
		e.Message = msgInvalidCredentials
	case status >= 400 && status < 500:
		e.Kind = KindValidation
		e.Message = msgRequestRejected
		if msg := messageFromBody(body); msg != "" {
			e.Message = msg
		}
	case status >= 500:
		e.Kind = KindServer
		e.Message = msgServerError
	default:
		e.Kind = KindServer
		e.Message = msgGeneric
	}

	return e
}

// messageFromBody pulls the server's {message} field if the error body has one.
func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == kind
}

func IsConnectivity(err error) bool   { return IsKind(err, KindConnectivity) }
func IsAuthentication(err error) bool { return IsKind(err, KindAuthentication) }
func IsValidation(err error) bool     { return IsKind(err, KindValidation) }
func IsServer(err error) bool         { return IsKind(err, KindServer) }
