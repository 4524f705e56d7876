package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"warimas-pos/internal/logger"
	"warimas-pos/internal/metrics"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20 // 4MB

// AuthProvider supplies the current access token and performs the
// single-flight refresh when the backend rejects one. The session manager
// implements it; the pipeline never looks inside tokens.
type AuthProvider interface {
	Token() string
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Config carries the knobs NewClient needs.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	EnableBreaker bool
	Metrics       *metrics.Pipeline
}

// Client is the single request pipeline every backend call goes through:
// it attaches the bearer token, throttles per tier, retries once through a
// session refresh on 401, and normalizes every failure into *Error.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *tierLimiter
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	metrics    *metrics.Pipeline

	mu   sync.RWMutex
	auth AuthProvider
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// SkipAuthRefresh marks calls that must never trigger the refresh
	// protocol: login, refresh and logout themselves.
	SkipAuthRefresh bool
}

func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	// The jar carries the httponly refresh cookie between login and refresh
	// calls; nothing in it is ever persisted by this client.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		limiter: newTierLimiter(),
		metrics: cfg.Metrics,
	}

	if c.metrics == nil {
		c.metrics = metrics.NewPipeline()
	}

	if cfg.EnableBreaker {
		c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:    "pos-api",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}

	return c, nil
}

// SetAuth wires the session manager in after construction; the manager
// itself needs the client for its login/refresh calls.
func (c *Client) SetAuth(p AuthProvider) {
	c.mu.Lock()
	c.auth = p
	c.mu.Unlock()
}

func (c *Client) authProvider() AuthProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

func (c *Client) token() string {
	if auth := c.authProvider(); auth != nil {
		return auth.Token()
	}
	return ""
}

// Metrics exposes the pipeline counters.
func (c *Client) Metrics() *metrics.Pipeline {
	return c.metrics
}

// ----------------- Typed helpers -----------------

// List performs a paginated GET and unwraps {data, paging} into out + Paging.
func (c *Client) List(ctx context.Context, path string, q ListQuery, out any) (Paging, error) {
	return c.DoList(ctx, Request{Method: http.MethodGet, Path: path, Query: q.values()}, out)
}

// Get performs a GET against a single-entity endpoint, unwrapping {data}.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do executes a mutation-shaped call and unwraps the inner {data} payload
// into out. Pass a nil out to discard the payload.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	env, err := c.do(ctx, req)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return &Error{Kind: KindServer, Message: msgMalformedResponse}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: KindServer, Message: msgMalformedResponse, Err: err}
	}
	return nil
}

// DoList executes a list-shaped call and unwraps {data, paging}. Which shape
// an endpoint has is fixed by its method and path convention; callers pick
// Do or DoList accordingly instead of sniffing bodies.
func (c *Client) DoList(ctx context.Context, req Request, out any) (Paging, error) {
	env, err := c.do(ctx, req)
	if err != nil {
		return Paging{}, err
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return Paging{}, &Error{Kind: KindServer, Message: msgMalformedResponse, Err: err}
		}
	}

	if env.Paging == nil {
		return Paging{}, nil
	}
	return *env.Paging, nil
}

// ----------------- Core pipeline -----------------

func (c *Client) do(ctx context.Context, req Request) (*envelope, error) {
	reqID := uuid.New().String()
	ctx = logger.WithRequestID(ctx, reqID)
	log := logger.FromCtx(ctx).With(
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)

	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: msgRequestRejected, Err: err}
		}
		payload = b
	}

	timer := metrics.StartTimer()

	status, body, err := c.execute(ctx, req, payload, reqID, c.token())
	if err != nil {
		c.metrics.RequestFailures.Inc()
		log.Warn("request did not reach the backend", zap.Error(err))
		return nil, connectivityError(err)
	}

	// A 401 from an authenticated call triggers exactly one refresh-and-replay
	// round. The replay below is the retry; there is no second round.
	if status == http.StatusUnauthorized && !req.SkipAuthRefresh {
		if auth := c.authProvider(); auth != nil {
			c.metrics.AuthRetries.Inc()
			log.Info("access token rejected, refreshing session")

			token, refreshErr := auth.RefreshAccessToken(ctx)
			if refreshErr != nil {
				c.metrics.RequestFailures.Inc()
				return nil, refreshErr
			}

			status, body, err = c.execute(ctx, req, payload, reqID, token)
			if err != nil {
				c.metrics.RequestFailures.Inc()
				log.Warn("replay did not reach the backend", zap.Error(err))
				return nil, connectivityError(err)
			}
		}
	}

	if status < 200 || status > 299 {
		c.metrics.RequestFailures.Inc()
		normalized := statusError(status, body)
		log.Warn("request rejected",
			zap.Int("status", status),
			zap.String("kind", string(normalized.Kind)),
			zap.Duration("duration", timer.Duration()),
		)
		return nil, normalized
	}

	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			c.metrics.RequestFailures.Inc()
			return nil, &Error{Kind: KindServer, Message: msgMalformedResponse, Status: status, Err: err}
		}
	}

	log.Debug("request completed",
		zap.Int("status", status),
		zap.Duration("duration", timer.Duration()),
	)

	return &env, nil
}

// execute performs one HTTP round trip and drains the body.
func (c *Client) execute(ctx context.Context, req Request, payload []byte, reqID, token string) (int, []byte, error) {
	if err := c.limiter.wait(ctx, req.Path); err != nil {
		return 0, nil, err
	}

	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), reqBody)
	if err != nil {
		return 0, nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.metrics.Requests.Inc()

	resp, err := c.send(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
}
