package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"warimas-pos/internal/api"
	"warimas-pos/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Auth endpoints. Login, refresh and logout are the calls that must never
// trigger the refresh protocol themselves.
const (
	loginPath   = "/api/users/login"
	refreshPath = "/api/users/refresh"
	logoutPath  = "/api/users/logout"
)

// DefaultExpiryThreshold is how close to expiry a token may get before
// IsExpiringSoon starts reporting true.
const DefaultExpiryThreshold = 60 * time.Second

// Manager is the single owner of the access token and the identity decoded
// from it. Both move together: a manager is either fully authenticated or
// fully signed out, never one without the other.
//
// The token lives in memory only. The long-lived refresh credential is an
// httponly cookie the pipeline's jar carries, so a restart restores the
// session through Bootstrap rather than from disk.
type Manager struct {
	client *api.Client

	mu       sync.RWMutex
	token    string
	identity *Claims

	// sf collapses concurrent refresh callers into one backend call whose
	// outcome every caller shares.
	sf singleflight.Group

	navigate  func(path string)
	onChange  []func(*Claims)
	threshold time.Duration

	now func() time.Time
}

// NewManager builds a signed-out manager and registers it as the client's
// auth provider, closing the loop that lets the pipeline refresh through it.
func NewManager(client *api.Client) *Manager {
	m := &Manager{
		client:    client,
		threshold: DefaultExpiryThreshold,
		now:       time.Now,
	}
	client.SetAuth(m)
	return m
}

// SetNavigate wires the routing collaborator invoked after login and after
// any logout, forced or requested.
func (m *Manager) SetNavigate(fn func(path string)) {
	m.mu.Lock()
	m.navigate = fn
	m.mu.Unlock()
}

// OnIdentityChange registers a listener fired whenever the signed-in
// identity changes; it receives nil on sign-out.
func (m *Manager) OnIdentityChange(fn func(*Claims)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

/* ---------- LOGIN / LOGOUT / BOOTSTRAP ---------- */

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the credentials and installs the returned session.
// Session state is left untouched when the call fails.
func (m *Manager) Login(ctx context.Context, username, password string) (*Claims, error) {
	log := logger.FromCtx(ctx)

	if username == "" || password == "" {
		return nil, &api.Error{Kind: api.KindValidation, Message: "username and password are required"}
	}

	var token string
	err := m.client.Do(ctx, api.Request{
		Method:          http.MethodPost,
		Path:            loginPath,
		Body:            credentials{Username: username, Password: password},
		SkipAuthRefresh: true,
	}, &token)
	if err != nil {
		log.Warn("login rejected", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	claims, err := DecodeToken(token)
	if err != nil {
		log.Error("login returned an undecodable token", zap.Error(err))
		return nil, err
	}

	m.install(token, claims)
	log.Info("login completed",
		zap.String("username", claims.Username),
		zap.String("role", string(claims.Role)),
	)

	m.goTo(claims.Role.LandingPath())
	return claims, nil
}

// Logout clears the session no matter what the backend says. The
// server-side invalidation is best effort; its failure is only logged, so
// logout never fails from the caller's point of view.
func (m *Manager) Logout(ctx context.Context) {
	err := m.client.Do(ctx, api.Request{
		Method:          http.MethodDelete,
		Path:            logoutPath,
		SkipAuthRefresh: true,
	}, nil)
	if err != nil {
		logger.FromCtx(ctx).Warn("server-side logout failed", zap.Error(err))
	}

	m.clear()
	m.goTo(PathLogin)
}

// Bootstrap restores a session from the refresh cookie, run once at process
// start. A nil, nil return is a definite "signed out"; a connectivity error
// is surfaced so the caller can tell "offline" from "no session".
func (m *Manager) Bootstrap(ctx context.Context) (*Claims, error) {
	if _, err := m.RefreshAccessToken(ctx); err != nil {
		if api.IsConnectivity(err) {
			return nil, err
		}
		return nil, nil
	}
	return m.Identity(), nil
}

/* ---------- STATE ACCESS ---------- */

// Token returns the current access token, empty when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Identity returns a copy of the signed-in identity, nil when signed out.
func (m *Manager) Identity() *Claims {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	cp := *m.identity
	return &cp
}

func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// IsExpiringSoon reports whether the token needs renewing: true when there
// is no token at all, or when it expires within the default threshold.
func (m *Manager) IsExpiringSoon() bool {
	return m.ExpiringWithin(m.threshold)
}

func (m *Manager) ExpiringWithin(threshold time.Duration) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return true
	}
	return m.identity.ExpiresIn(m.now()) <= threshold
}

/* ---------- REFRESH ---------- */

// RefreshAccessToken renews the access token through the refresh cookie.
// Concurrent callers collapse into a single backend call and every caller
// receives that one call's outcome. Any refresh failure ends the session.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	token, err, _ := m.sf.Do(refreshPath, func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	log := logger.FromCtx(ctx)
	m.client.Metrics().Refreshes.Inc()

	var token string
	err := m.client.Do(ctx, api.Request{
		Method:          http.MethodGet,
		Path:            refreshPath,
		SkipAuthRefresh: true,
	}, &token)
	if err != nil {
		m.client.Metrics().RefreshFailures.Inc()
		log.Warn("session refresh failed", zap.Error(err))
		m.forceLogout()
		if api.IsConnectivity(err) {
			return "", err
		}
		return "", expiredError(err)
	}

	claims, err := DecodeToken(token)
	if err != nil {
		m.client.Metrics().RefreshFailures.Inc()
		log.Error("refresh returned an undecodable token", zap.Error(err))
		m.forceLogout()
		return "", err
	}

	m.install(token, claims)
	log.Info("session refreshed", zap.String("username", claims.Username))
	return token, nil
}

/* ---------- INTERNAL STATE TRANSITIONS ---------- */

func (m *Manager) install(token string, claims *Claims) {
	m.mu.Lock()
	m.token = token
	m.identity = claims
	listeners := m.onChange
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(claims)
	}
}

// clear drops the session and reports whether there was one to drop.
// Listeners hear about it only when state actually changed.
func (m *Manager) clear() bool {
	m.mu.Lock()
	had := m.token != ""
	m.token = ""
	m.identity = nil
	listeners := m.onChange
	m.mu.Unlock()

	if had {
		for _, fn := range listeners {
			fn(nil)
		}
	}
	return had
}

// forceLogout ends the session after an unrecoverable refresh failure. The
// redirect fires only when there was a session to end, so a burst of shared
// failures produces exactly one navigation.
func (m *Manager) forceLogout() {
	if m.clear() {
		m.goTo(PathLogin)
	}
}

func (m *Manager) goTo(path string) {
	m.mu.RLock()
	nav := m.navigate
	m.mu.RUnlock()
	if nav != nil {
		nav(path)
	}
}
