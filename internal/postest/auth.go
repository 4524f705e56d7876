package postest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"warimas-pos/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const refreshCookie = "refresh_token"

type ctxKey string

const claimsKey ctxKey = "claims"

func (s *Server) mintToken(a *account) (string, error) {
	now := time.Now()
	claims := session.Claims{
		UserID:   a.ID,
		Username: a.Username,
		Name:     a.Name,
		Role:     a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) findAccount(username string) *account {
	for _, a := range s.accounts {
		if a.Username == username {
			return a
		}
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.findAccount(creds.Username)
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.mintToken(acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	refresh := uuid.New().String()
	s.refreshTokens[refresh] = acc.ID
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
	})

	writeData(w, http.StatusOK, token)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshCalls++

	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "refresh token missing")
		return
	}
	if s.failRefresh {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	id, ok := s.refreshTokens[cookie.Value]
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	acc, ok := s.accounts[id]
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	token, err := s.mintToken(acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeData(w, http.StatusOK, token)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cookie, err := r.Cookie(refreshCookie); err == nil {
		delete(s.refreshTokens, cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeData(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// requireAuth admits only requests carrying a valid, unexpired bearer token
// and parks the decoded claims on the context for the handlers.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization")
			return
		}

		claims := &session.Claims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func claimsFrom(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(claimsKey).(*session.Claims)
	return c
}

// requireAdmin wraps handlers that manage operator accounts.
func requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := claimsFrom(r.Context())
		if c == nil || c.Role != session.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		h(w, r)
	}
}
