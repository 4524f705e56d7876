package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	mu        sync.Mutex
	token     string
	refreshed int

	refreshErr error
}

func (s *stubAuth) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *stubAuth) RefreshAccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed++
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	s.token = "fresh-token"
	return s.token, nil
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestClient_Do(t *testing.T) {
	t.Run("Success - unwraps data and sends standard headers", func(t *testing.T) {
		var gotReqID, gotAuth, gotContentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotReqID = r.Header.Get("X-Request-ID")
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":{"id":7,"name":"Mineral Water"}}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		c.SetAuth(&stubAuth{token: "abc"})

		var out struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		err := c.Post(context.Background(), "/api/products", map[string]string{"name": "Mineral Water"}, &out)

		require.NoError(t, err)
		assert.Equal(t, int64(7), out.ID)
		assert.Equal(t, "Mineral Water", out.Name)
		assert.NotEmpty(t, gotReqID)
		assert.Equal(t, "Bearer abc", gotAuth)
		assert.Equal(t, "application/json", gotContentType)
	})

	t.Run("Success - nil out discards payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"deleted":true}}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Delete(context.Background(), "/api/products/7", nil)

		require.NoError(t, err)
	})

	t.Run("Failed - malformed body on success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<!doctype html><body>proxy error</body>`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Get(context.Background(), "/api/products/7", &struct{}{})

		require.Error(t, err)
		assert.True(t, IsServer(err))
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, msgMalformedResponse, apiErr.Message)
	})
}

func TestClient_DoList(t *testing.T) {
	t.Run("Success - unwraps data and paging", func(t *testing.T) {
		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte(`{"data":[{"id":1},{"id":2}],"paging":{"total":12,"hasMore":true,"cursor":2}}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)

		var out []struct {
			ID int64 `json:"id"`
		}
		paging, err := c.List(context.Background(), "/api/products", ListQuery{Search: "water", Size: 2}, &out)

		require.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, int64(12), paging.Total)
		assert.True(t, paging.HasMore)
		assert.Equal(t, int64(2), paging.Cursor)
		assert.Contains(t, gotQuery, "search=water")
		assert.Contains(t, gotQuery, "size=2")
	})

	t.Run("Success - missing paging yields zero value", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)

		var out []json.RawMessage
		paging, err := c.DoList(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"}, &out)

		require.NoError(t, err)
		assert.Equal(t, Paging{}, paging)
	})
}

func TestClient_ErrorNormalization(t *testing.T) {
	t.Run("Failed - connection refused maps to connectivity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // nothing listens anymore

		c := newTestClient(t, srv.URL)
		err := c.Get(context.Background(), "/api/products", nil)

		require.Error(t, err)
		assert.True(t, IsConnectivity(err))
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, msgOffline, apiErr.Message)
	})

	t.Run("Failed - 401 without session maps to authentication", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"invalid username or password"}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Do(context.Background(), Request{
			Method:          http.MethodPost,
			Path:            "/api/users/login",
			Body:            map[string]string{"username": "x", "password": "y"},
			SkipAuthRefresh: true,
		}, nil)

		require.Error(t, err)
		assert.True(t, IsAuthentication(err))
	})

	t.Run("Failed - 4xx carries backend message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"product name already exists"}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Post(context.Background(), "/api/products", map[string]string{"name": "dup"}, nil)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "product name already exists", apiErr.Message)
		assert.Equal(t, http.StatusConflict, apiErr.Status)
	})

	t.Run("Failed - 5xx maps to server with stable message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream exploded`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		err := c.Get(context.Background(), "/api/products", nil)

		require.Error(t, err)
		assert.True(t, IsServer(err))
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, msgServerError, apiErr.Message)
	})
}

func TestClient_RefreshReplay(t *testing.T) {
	t.Run("Success - 401 triggers one refresh and replay", func(t *testing.T) {
		var calls int
		var mu sync.Mutex
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			mu.Unlock()

			if r.Header.Get("Authorization") != "Bearer fresh-token" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"token expired"}`))
				return
			}
			w.Write([]byte(`{"data":{"ok":true}}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		auth := &stubAuth{token: "stale-token"}
		c.SetAuth(auth)

		var out struct {
			OK bool `json:"ok"`
		}
		err := c.Get(context.Background(), "/api/products/1", &out)

		require.NoError(t, err)
		assert.True(t, out.OK)
		assert.Equal(t, 1, auth.refreshed)
		assert.Equal(t, 2, calls)
		assert.Equal(t, uint64(1), c.Metrics().AuthRetries.Load())
	})

	t.Run("Failed - refresh error surfaces unchanged, no second replay", func(t *testing.T) {
		var calls int
		var mu sync.Mutex
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls++
			mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"token expired"}`))
		}))
		defer srv.Close()

		sessionExpired := &Error{Kind: KindAuthentication, Message: "session expired, please sign in again"}

		c := newTestClient(t, srv.URL)
		auth := &stubAuth{token: "stale-token", refreshErr: sessionExpired}
		c.SetAuth(auth)

		err := c.Get(context.Background(), "/api/products/1", nil)

		require.Error(t, err)
		assert.True(t, errors.Is(err, sessionExpired) || err == sessionExpired)
		assert.Equal(t, 1, auth.refreshed)
		assert.Equal(t, 1, calls)
	})

	t.Run("Success - replayed 401 is returned, not refreshed again", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"token expired"}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		auth := &stubAuth{token: "stale-token"}
		c.SetAuth(auth)

		err := c.Get(context.Background(), "/api/products/1", nil)

		require.Error(t, err)
		assert.True(t, IsAuthentication(err))
		assert.Equal(t, 1, auth.refreshed)
	})

	t.Run("Success - SkipAuthRefresh never touches the session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"refresh token missing"}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL)
		auth := &stubAuth{token: "whatever"}
		c.SetAuth(auth)

		err := c.Do(context.Background(), Request{
			Method:          http.MethodPost,
			Path:            "/api/users/refresh",
			SkipAuthRefresh: true,
		}, nil)

		require.Error(t, err)
		assert.True(t, IsAuthentication(err))
		assert.Equal(t, 0, auth.refreshed)
	})
}

func TestClient_Breaker(t *testing.T) {
	t.Run("Failed - open breaker short-circuits to connectivity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, EnableBreaker: true})
		require.NoError(t, err)

		for i := 0; i < 6; i++ {
			err = c.Get(context.Background(), "/api/products", nil)
			require.Error(t, err)
		}
		assert.True(t, IsConnectivity(err))
	})
}
