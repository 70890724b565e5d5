package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/core"
	"propmanager/internal/credentials"
	"propmanager/internal/gateway"
	"propmanager/internal/gateway/memory"
	"propmanager/internal/gateway/rest"
	"propmanager/internal/log"
	"propmanager/internal/middleware/ratelimit"
)

type harness struct {
	gw      *memory.Gateway
	srv     *httptest.Server
	session *credentials.Session
	client  *rest.Client
	skew    *atomic.Int64
	hits    *atomic.Int32
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	skew := &atomic.Int64{}
	gw := memory.NewSeeded(memory.Options{
		JWTSecret: "test-secret-0123456789",
		TokenTTL:  time.Hour,
		Now:       func() time.Time { return time.Now().Add(time.Duration(skew.Load())) },
	})
	_, err := gw.AddUser("demo@example.com", "demo", "Demo User")
	require.NoError(t, err)

	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	hits := &atomic.Int32{}
	server := NewServer(":0", gw, opts)
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })
	handler := server.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	session, err := credentials.NewSession(context.Background(), nil)
	require.NoError(t, err)
	client, err := rest.New(session, rest.Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: log.Discard().Logger})
	require.NoError(t, err)

	return &harness{gw: gw, srv: srv, session: session, client: client, skew: skew, hits: hits}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	resp, err := h.client.Login(context.Background(), "demo@example.com", "demo")
	require.NoError(t, err)
	require.NoError(t, h.session.Set(context.Background(), resp.Token, resp.User))
}

func TestHealthAndUnauthenticated(t *testing.T) {
	h := newHarness(t, Options{})

	resp, err := http.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(h.srv.URL + "/properties")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Missing token"}`, string(body))
}

func TestLoginFailureIsRequestError(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.client.Login(context.Background(), "demo@example.com", "wrong")
	var reqErr *gateway.RequestError
	require.True(t, errors.As(err, &reqErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Invalid credentials", reqErr.Message)
	assert.False(t, gateway.IsAuthExpired(err))
}

func TestRegisterThenRead(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	resp, err := h.client.Register(ctx, "new@example.com", "pw", "New Person")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	require.NoError(t, h.session.Set(ctx, resp.Token, resp.User))

	props, err := h.client.ListProperties(ctx)
	require.NoError(t, err)
	assert.Len(t, props, 4)

	_, err = h.client.Register(ctx, "new@example.com", "pw", "Again")
	var reqErr *gateway.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusConflict, reqErr.StatusCode)
}

func TestPropertyLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t)
	ctx := context.Background()

	created, err := h.client.CreateProperty(ctx, core.PropertyInput{
		Address: "12 Elm Street", UnitCount: 2, MonthlyRent: core.Dollars(1500),
		Status: core.Vacant, Type: core.Commercial,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, core.Commercial, created.Type)

	occupied := core.Occupied
	updated, err := h.client.UpdateProperty(ctx, created.ID, core.PropertyUpdate{Status: &occupied})
	require.NoError(t, err)
	assert.Equal(t, core.Occupied, updated.Status)
	assert.Equal(t, "12 Elm Street", updated.Address)

	require.NoError(t, h.client.DeleteProperty(ctx, created.ID))

	err = h.client.DeleteProperty(ctx, created.ID)
	var reqErr *gateway.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Contains(t, reqErr.Message, "not found")
}

func TestTenantAndPaymentFlow(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t)
	ctx := context.Background()

	tenant, err := h.client.CreateTenant(ctx, core.TenantInput{
		Name: "Sam Lee", PropertyID: "2", Email: "sam@example.com",
		LeaseStart: core.NewDate(2024, 1, 1), LeaseEnd: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	props, err := h.client.ListProperties(ctx)
	require.NoError(t, err)
	for _, p := range props {
		if p.ID == "2" {
			assert.Equal(t, core.Occupied, p.Status, "tenant assignment occupies the property")
		}
	}

	payment, err := h.client.CreatePayment(ctx, core.PaymentInput{
		PropertyID: "2", TenantID: tenant.ID, Amount: core.Dollars(1200),
		Date: core.NewDate(2024, 5, 1), Status: core.Pending,
	})
	require.NoError(t, err)
	assert.Equal(t, core.Pending, payment.Status)

	payments, err := h.client.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 4)

	require.NoError(t, h.client.DeleteTenant(ctx, tenant.ID))
}

func TestExpiredTokenClearsSessionWithoutRetry(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t)
	ctx := context.Background()

	h.skew.Store(int64(2 * time.Hour))
	before := h.hits.Load()

	_, err := h.client.ListTenants(ctx)
	require.Error(t, err)
	assert.True(t, gateway.IsAuthExpired(err))
	assert.False(t, h.session.IsAuthenticated())
	assert.Equal(t, before+1, h.hits.Load(), "a 401 is not retried")
}

func TestRawRequests(t *testing.T) {
	h := newHarness(t, Options{})
	h.login(t)

	do := func(method, path, body string) (int, string) {
		req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+h.session.Token())
		req.Header.Set("Content-Type", "application/json")
		resp, err := h.srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	status, body := do(http.MethodPost, "/properties", `{"address":"9 Oak","monthlyRent":800}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, `"status":"vacant"`)
	assert.Contains(t, body, `"unitCount":1`)

	status, body = do(http.MethodPost, "/properties", `{"address":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "Invalid request body")

	status, body = do(http.MethodPost, "/properties", `{"address":"","monthlyRent":800}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, `"error"`)

	status, body = do(http.MethodDelete, "/properties/1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Property deleted"}`, body)

	status, _ = do(http.MethodPatch, "/properties/1", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, Options{})

	req, err := http.NewRequest(http.MethodOptions, h.srv.URL+"/properties", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, Options{RateLimit: &ratelimit.Config{RequestsPerSecond: 0.001, Burst: 1}})

	resp, err := http.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, string(body))
}
