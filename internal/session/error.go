package session

import (
	"errors"

	"warimas-pos/internal/api"
)

var (
	// ErrMalformedToken marks a token the client cannot decode.
	ErrMalformedToken = errors.New("malformed access token")
)

const msgSessionExpired = "session expired, please sign in again"

// expiredError shapes a rejected refresh into the authentication error the
// rest of the app is written against.
func expiredError(cause error) error {
	return &api.Error{Kind: api.KindAuthentication, Message: msgSessionExpired, Err: cause}
}
