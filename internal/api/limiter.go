package api

import (
	"context"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Auth endpoints (Strict): login, refresh, logout
	limitAuth = rate.Limit(2)
	burstAuth = 5

	// Resource endpoints (Default)
	limitGeneral = rate.Limit(20)
	burstGeneral = 40
)

// authPaths are the endpoints throttled by the strict tier. A cashier
// hammering retry on a login form must not flood the auth service.
var authPaths = map[string]bool{
	"/api/users/login":   true,
	"/api/users/refresh": true,
	"/api/users/logout":  true,
}

// tierLimiter throttles outbound requests per tier before they leave the
// client, instead of letting the backend answer 429.
type tierLimiter struct {
	auth    *rate.Limiter
	general *rate.Limiter
}

func newTierLimiter() *tierLimiter {
	return &tierLimiter{
		auth:    rate.NewLimiter(limitAuth, burstAuth),
		general: rate.NewLimiter(limitGeneral, burstGeneral),
	}
}

// wait blocks until the tier for path allows another request, or until the
// context is cancelled.
func (l *tierLimiter) wait(ctx context.Context, path string) error {
	if authPaths[path] {
		return l.auth.Wait(ctx)
	}
	return l.general.Wait(ctx)
}
