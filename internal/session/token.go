package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role separates the two POS user kinds. The backend enforces permissions;
// the client only uses the role to pick the landing surface after login.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCashier Role = "CASHIER"
)

// Landing routes per role plus the login surface for everyone else.
const (
	PathLogin   = "/login"
	PathAdmin   = "/admin"
	PathCashier = "/cashier"
)

func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return PathAdmin
	case RoleCashier:
		return PathCashier
	default:
		return PathLogin
	}
}

// Claims is the access token payload minted by the backend. The client
// decodes it without verifying the signature, the same way a browser app
// reads its own token: a forged token buys nothing the backend will accept.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// ExpiresIn reports how long the token stays valid from the given instant.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// DecodeToken extracts the identity carried by an access token. Any
// syntactic problem, including a missing username or expiry, comes back as
// ErrMalformedToken.
func DecodeToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Username == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
