// Package rest is the HTTP adapter for the property-management backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"propmanager/internal/core"
	"propmanager/internal/credentials"
	"propmanager/internal/gateway"
)

// DefaultTimeout bounds every request unless Options says otherwise.
const DefaultTimeout = 30 * time.Second

// Ensure interface conformance
var _ gateway.Gateway = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout applies per request; zero means DefaultTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Limiter throttles outgoing requests; nil disables throttling.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	session *credentials.Session
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client bound to session. The session supplies the bearer
// token and is cleared when the server answers 401.
func New(session *credentials.Session, opts Options) (*Client, error) {
	if session == nil {
		return nil, errors.New("rest: session is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rest: invalid base URL %q", opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: base,
		http:    httpClient,
		session: session,
		timeout: timeout,
		limiter: opts.Limiter,
		logger:  logger,
	}, nil
}

// newHTTPClient pools connections to the single backend host. Deadlines
// come from the per-request context, so the client itself has no timeout.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

func (c *Client) ListProperties(ctx context.Context) ([]core.Property, error) {
	var out []core.Property
	if err := c.do(ctx, call{method: http.MethodGet, path: "/properties", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProperty(ctx context.Context, in core.PropertyInput) (core.Property, error) {
	if err := in.Validate(); err != nil {
		return core.Property{}, err
	}
	var out core.Property
	err := c.do(ctx, call{method: http.MethodPost, path: "/properties", body: in, out: &out})
	return out, err
}

func (c *Client) UpdateProperty(ctx context.Context, id core.ID, u core.PropertyUpdate) (core.Property, error) {
	if err := u.Validate(); err != nil {
		return core.Property{}, err
	}
	var out core.Property
	err := c.do(ctx, call{method: http.MethodPut, path: "/properties/" + url.PathEscape(id.String()), body: u, out: &out})
	return out, err
}

func (c *Client) DeleteProperty(ctx context.Context, id core.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/properties/" + url.PathEscape(id.String())})
}

func (c *Client) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	var out []core.Tenant
	if err := c.do(ctx, call{method: http.MethodGet, path: "/tenants", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTenant(ctx context.Context, in core.TenantInput) (core.Tenant, error) {
	if err := in.Validate(); err != nil {
		return core.Tenant{}, err
	}
	var out core.Tenant
	err := c.do(ctx, call{method: http.MethodPost, path: "/tenants", body: in, out: &out})
	return out, err
}

func (c *Client) DeleteTenant(ctx context.Context, id core.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/tenants/" + url.PathEscape(id.String())})
}

func (c *Client) ListPayments(ctx context.Context) ([]core.Payment, error) {
	var out []core.Payment
	if err := c.do(ctx, call{method: http.MethodGet, path: "/payments", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePayment(ctx context.Context, in core.PaymentInput) (core.Payment, error) {
	if err := in.Validate(); err != nil {
		return core.Payment{}, err
	}
	var out core.Payment
	err := c.do(ctx, call{method: http.MethodPost, path: "/payments", body: in, out: &out})
	return out, err
}

// call describes one round trip.
type call struct {
	method string
	path   string
	body   any
	out    any
	// anonymous calls carry no bearer token and treat 401 as a plain
	// request failure (bad credentials), not an expired session.
	anonymous bool
	// fallback replaces the status-derived message when the body has none.
	fallback string
}

func (c *Client) do(ctx context.Context, cl call) error {
	target := c.baseURL + cl.path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.networkError(cl.method, target, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var sentToken string
	if !cl.anonymous {
		// The token is read once; a concurrent login or logout does not
		// change the header of a request already built.
		sentToken = c.session.Token()
		if sentToken != "" {
			req.Header.Set("Authorization", "Bearer "+sentToken)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Backend request failed",
			"method", cl.method, "path", cl.path, "request_id", requestID, "error", err)
		return c.networkError(cl.method, target, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Backend request completed",
		"method", cl.method,
		"path", cl.path,
		"status_code", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized && !cl.anonymous {
		_, _ = io.Copy(io.Discard, resp.Body)
		cleared, err := c.session.ClearIf(context.WithoutCancel(ctx), sentToken)
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to clear credentials after 401", "error", err)
		}
		if !cleared {
			c.logger.InfoContext(ctx, "Keeping newer session after 401 on an older token",
				"method", cl.method, "path", cl.path)
		}
		c.logger.WarnContext(ctx, "Session expired", "method", cl.method, "path", cl.path)
		return &gateway.AuthExpiredError{Method: cl.method, URL: target}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &gateway.RequestError{
			Method:     cl.method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp, cl.fallback),
		}
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		if isTransportError(err) {
			return c.networkError(cl.method, target, err)
		}
		return &gateway.RequestError{
			Method:     cl.method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response body: %v", err),
		}
	}
	return nil
}

func (c *Client) networkError(method, target string, err error) error {
	return &gateway.NetworkError{
		Method:  method,
		URL:     target,
		Timeout: isTimeout(err),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || isTimeout(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// errorMessage prefers the server's "error" then "message" field.
func errorMessage(resp *http.Response, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if fallback != "" {
		return fallback
	}
	return gateway.DefaultStatusMessage(resp.StatusCode)
}
