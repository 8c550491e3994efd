package spectra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the address of a locally running backend.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds every round trip of the default http.Client.
const DefaultTimeout = 30 * time.Second

// Endpoints are the authentication paths of the backend.
type Endpoints struct {
	Login    string
	Refresh  string
	Me       string
	Register string
}

// DefaultEndpoints returns the paths served by the Spectra backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:    "/api/v1/users/authenticate",
		Refresh:  "/api/v1/users/refresh",
		Me:       "/api/v1/users/me",
		Register: "/api/v1/users/",
	}
}

// Client performs authenticated JSON requests against the Spectra API.
//
// A Client is safe for concurrent use. It holds the current session token in
// memory and mirrors it into its TokenStore.
type Client struct {
	base      string
	http      *http.Client
	store     TokenStore
	log       logr.Logger
	metrics   *metrics
	endpoints Endpoints

	mu        sync.RWMutex
	token     string
	refreshes singleflight.Group
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithTokenStore sets the durable token storage, a MemoryStore by default.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) error {
		if s == nil {
			return errors.New("nil token store")
		}
		c.store = s
		return nil
	}
}

// WithLogger sets the client logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Client) error {
		c.log = resolveLogger(l)
		return nil
	}
}

// WithMetrics registers the client collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) error {
		m, err := newMetrics(reg)
		if err != nil {
			return fmt.Errorf("cannot register metrics: %w", err)
		}
		c.metrics = m
		return nil
	}
}

// WithTracing wraps the http transport with OpenTelemetry instrumentation.
// It must come after WithHTTPClient to instrument a custom client.
func WithTracing() Option {
	return func(c *Client) error {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.http
		hc.Transport = otelhttp.NewTransport(base)
		c.http = &hc
		return nil
	}
}

// WithEndpoints overrides the authentication paths.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) error {
		c.endpoints = e
		return nil
	}
}

func resolveLogger(l logr.Logger) logr.Logger {
	if l.GetSink() == nil {
		return logr.Discard()
	}
	return l
}

// New returns a Client for the API at baseURL. The session token is read once
// from the token store.
func New(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: want http(s)://host", baseURL)
	}
	c := &Client{
		base:      strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: DefaultTimeout},
		store:     NewMemoryStore(),
		log:       logr.Discard(),
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	token, err := c.store.Get(ctx, KeySessionToken)
	if err != nil {
		return nil, fmt.Errorf("cannot load session token: %w", err)
	}
	c.token = token
	return c, nil
}

// BaseURL returns the API base address, without trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Store returns the durable token storage.
func (c *Client) Store() TokenStore { return c.store }

// Token returns the current session token, "" if none.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token, "" clears it. The durable copy is
// written first and the in-memory one only if that succeeded.
func (c *Client) SetToken(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.persist(ctx, KeySessionToken, token); err != nil {
		return err
	}
	c.token = token
	return nil
}

// setTokens replaces both tokens.
func (c *Client) setTokens(ctx context.Context, access, refresh string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.persist(ctx, KeyRefreshToken, refresh); err != nil {
		return err
	}
	if err := c.persist(ctx, KeySessionToken, access); err != nil {
		return err
	}
	c.token = access
	return nil
}

// clearTokens forgets both tokens. The in-memory token is cleared even if the
// store fails.
func (c *Client) clearTokens(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	return errors.Join(
		c.persist(ctx, KeySessionToken, ""),
		c.persist(ctx, KeyRefreshToken, ""),
	)
}

func (c *Client) persist(ctx context.Context, key, value string) error {
	var err error
	if value == "" {
		err = c.store.Delete(ctx, key)
	} else {
		err = c.store.Set(ctx, key, value)
	}
	if err != nil {
		return fmt.Errorf("cannot store %s: %w", key, err)
	}
	return nil
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // encoded as JSON when not nil

	// Anonymous requests carry no token and never trigger a refresh.
	Anonymous bool
}

// Get issues a GET request with optional query parameters and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT request with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends req and decodes a successful JSON response into out. out may be
// nil, and it is left untouched by empty or 204 responses.
//
// A 401 on an authenticated request triggers a single token refresh followed
// by a single retry. Any failure is returned as an *Error, except for
// requests that cannot be built.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var payload []byte
	if req.Body != nil {
		var err error
		if payload, err = json.Marshal(req.Body); err != nil {
			return fmt.Errorf("cannot encode %s %s body: %w", req.Method, req.Path, err)
		}
	}
	token := ""
	if !req.Anonymous {
		token = c.Token()
	}
	status, body, err := c.send(ctx, req, payload, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && token != "" {
		if fresh, ok := c.renew(ctx, token); ok {
			status, body, err = c.send(ctx, req, payload, fresh)
			if err != nil {
				return err
			}
		}
	}
	return decode(status, body, out)
}

// send performs a single round trip and returns the status and the body.
func (c *Client) send(ctx context.Context, req Request, payload []byte, token string) (int, []byte, error) {
	target := c.base + req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("cannot build %s %s: %w", req.Method, req.Path, err)
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(hr)
	if err != nil {
		c.metrics.observe(req.Method, 0, time.Since(start))
		c.log.V(1).Info("request failed", "method", req.Method, "path", req.Path, "error", err.Error())
		return 0, nil, &Error{Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	c.metrics.observe(req.Method, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, &Error{Message: msgNetwork, Err: err}
	}
	c.log.V(1).Info("request", "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}

// decode turns a response into the result or an *Error.
func decode(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		return newError(status, body)
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Status: status, Message: "invalid JSON response", Err: err}
	}
	return nil
}

// renew returns the token to retry with after rejected was refused.
//
// If another request already replaced rejected, the current token is used as
// is. Otherwise concurrent callers share a single refresh call, each one
// waiting for it no longer than its own ctx allows.
func (c *Client) renew(ctx context.Context, rejected string) (string, bool) {
	if current := c.Token(); current != "" && current != rejected {
		return current, true
	}
	ch := c.refreshes.DoChan(rejected, func() (any, error) {
		// The refresh outcome is shared, it must not depend on one caller's cancellation.
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		// The refresh goes on for the other callers, this one keeps its 401.
		return "", false
	case res := <-ch:
		if res.Err != nil {
			return "", false
		}
		return res.Val.(string), true
	}
}

var errNoRefreshToken = errors.New("no refresh token")

// refresh mints a new session token with the stored refresh token. Both
// tokens are cleared if the backend refuses it.
func (c *Client) refresh(ctx context.Context) (string, error) {
	rt, err := c.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		c.log.Error(err, "cannot read refresh token")
		c.metrics.refreshed(refreshSkipped)
		return "", err
	}
	if rt == "" {
		c.metrics.refreshed(refreshSkipped)
		return "", errNoRefreshToken
	}
	var pair TokenPair
	err = c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.Refresh,
		Body:      map[string]string{"refresh_token": rt},
		Anonymous: true,
	}, &pair)
	if err == nil && pair.AccessToken == "" {
		err = errors.New("refresh response without access token")
	}
	if err != nil {
		c.metrics.refreshed(refreshFailure)
		c.log.Info("session refresh failed, signing out", "error", err.Error())
		if cerr := c.clearTokens(ctx); cerr != nil {
			c.log.Error(cerr, "cannot clear tokens")
		}
		return "", err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = rt
	}
	if err := c.setTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		c.metrics.refreshed(refreshFailure)
		c.log.Error(err, "cannot store refreshed tokens")
		return "", err
	}
	c.metrics.refreshed(refreshSuccess)
	c.log.Info("session refreshed")
	return pair.AccessToken, nil
}
