package session

import (
	"context"
	"time"

	"warimas-pos/internal/logger"

	"go.uber.org/zap"
)

// DefaultWatchdogInterval keeps the poll fine enough that a token is
// renewed at least one tick before the expiry threshold runs out.
const DefaultWatchdogInterval = 30 * time.Second

// Watchdog proactively renews the access token before it expires so
// interactive calls rarely pay the 401 round trip. It goes through the
// manager's single-flight refresh, so it never races a 401-triggered
// renewal.
type Watchdog struct {
	manager  *Manager
	interval time.Duration
}

func NewWatchdog(m *Manager, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	return &Watchdog{manager: m, interval: interval}
}

// Run polls until ctx is cancelled. Renewal failures are logged and left to
// the manager's forced-logout handling; the loop itself keeps going so a
// later sign-in is watched again.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.manager.IsAuthenticated() || !w.manager.IsExpiringSoon() {
				continue
			}
			if _, err := w.manager.RefreshAccessToken(ctx); err != nil {
				logger.FromCtx(ctx).Warn("background token renewal failed", zap.Error(err))
			}
		}
	}
}
