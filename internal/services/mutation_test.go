package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/amqp"
	"propmanager/internal/core"
	"propmanager/internal/gateway"
	"propmanager/internal/gateway/memory"
	"propmanager/internal/store"
)

// faultyGateway injects failures in front of the in-memory backend.
type faultyGateway struct {
	*memory.Gateway

	mu          sync.Mutex
	writeErr    error
	paymentsErr error
	writes      int
}

func (f *faultyGateway) write() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	return f.writeErr
}

func (f *faultyGateway) CreateProperty(ctx context.Context, in core.PropertyInput) (core.Property, error) {
	if err := f.write(); err != nil {
		return core.Property{}, err
	}
	return f.Gateway.CreateProperty(ctx, in)
}

func (f *faultyGateway) CreateTenant(ctx context.Context, in core.TenantInput) (core.Tenant, error) {
	if err := f.write(); err != nil {
		return core.Tenant{}, err
	}
	return f.Gateway.CreateTenant(ctx, in)
}

func (f *faultyGateway) ListPayments(ctx context.Context) ([]core.Payment, error) {
	f.mu.Lock()
	err := f.paymentsErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Gateway.ListPayments(ctx)
}

type countingRefresher struct {
	*store.Store
	mu    sync.Mutex
	count int
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return c.Store.Refresh(ctx)
}

type recordingPublisher struct {
	msgs []*amqp.MutationMessage
	err  error
}

func (p *recordingPublisher) PublishMutation(_ context.Context, msg *amqp.MutationMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fixture struct {
	gw      *faultyGateway
	store   *store.Store
	counter *countingRefresher
	states  []MutationState
	coord   *Coordinator
}

func newFixture(t *testing.T, opts ...CoordinatorOption) *fixture {
	t.Helper()
	f := &fixture{gw: &faultyGateway{Gateway: memory.NewSeeded(memory.Options{})}}
	f.store = store.New(f.gw)
	require.NoError(t, f.store.Refresh(context.Background()))
	f.counter = &countingRefresher{Store: f.store}
	opts = append(opts, WithObserver(func(_ string, s MutationState, _ error) {
		f.states = append(f.states, s)
	}))
	f.coord = NewCoordinator(f.gw, f.counter, opts...)
	return f
}

func newPropertyInput() core.PropertyInput {
	return core.PropertyInput{
		Address: "12 Elm Street", UnitCount: 2, MonthlyRent: core.Dollars(1500),
		Status: core.Occupied, Type: core.Residential,
	}
}

func TestAddPropertyRefreshesStore(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, StateIdle, f.coord.State())

	res, err := f.coord.AddProperty(context.Background(), newPropertyInput())
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.NoError(t, res.RefreshErr)
	assert.NotEmpty(t, res.Value.ID)

	assert.Len(t, f.store.Properties(), 5)
	assert.Equal(t, core.Dollars(9800), f.store.Stats().TotalMonthlyRevenue)
	assert.Equal(t, []MutationState{StateSubmitting, StateRefreshing, StateSettled}, f.states)
	assert.Equal(t, StateSettled, f.coord.State())
}

func TestWriteFailureSkipsRefresh(t *testing.T) {
	f := newFixture(t)
	serverErr := &gateway.RequestError{StatusCode: http.StatusInternalServerError, Message: "Server error. Please try again later."}
	f.gw.writeErr = serverErr
	before := f.store.Snapshot()

	_, err := f.coord.AddTenant(context.Background(), core.TenantInput{
		Name: "Sam Lee", PropertyID: "2", Email: "sam@example.com",
		LeaseStart: core.NewDate(2024, 1, 1), LeaseEnd: core.NewDate(2025, 1, 1),
	})
	assert.Same(t, serverErr, err, "error is returned unchanged")
	assert.Zero(t, f.counter.count)
	assert.Equal(t, before, f.store.Snapshot())
	assert.Equal(t, []MutationState{StateSubmitting, StateSettled}, f.states)
}

func TestRefreshFailureAfterWriteIsStale(t *testing.T) {
	f := newFixture(t)
	f.gw.paymentsErr = &gateway.NetworkError{Method: http.MethodGet, URL: "/payments", Timeout: true}
	before := f.store.Snapshot()

	res, err := f.coord.AddProperty(context.Background(), newPropertyInput())
	require.NoError(t, err, "the write itself succeeded")
	assert.True(t, res.Stale)
	assert.True(t, gateway.IsTimeout(res.RefreshErr))
	assert.Equal(t, 1, f.counter.count)

	// The store still shows the pre-write snapshot.
	assert.Equal(t, before.Generation, f.store.Generation())
	assert.Len(t, f.store.Properties(), 4)
	assert.True(t, gateway.IsTimeout(f.store.Status().LastErr))

	// The next successful refresh brings the new property in.
	f.gw.paymentsErr = nil
	require.NoError(t, f.store.Refresh(context.Background()))
	assert.Len(t, f.store.Properties(), 5)
}

func TestValidationFailsBeforeWrite(t *testing.T) {
	f := newFixture(t)
	in := newPropertyInput()
	in.UnitCount = 0

	_, err := f.coord.AddProperty(context.Background(), in)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "unitCount", vErr.Field)
	assert.Zero(t, f.gw.writes)
	assert.Zero(t, f.counter.count)
	assert.Empty(t, f.states)

	_, err = f.coord.RemoveTenant(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyTenantID)
	_, err = f.coord.UpdateProperty(context.Background(), "1", core.PropertyUpdate{})
	assert.ErrorIs(t, err, core.ErrEmptyUpdate)
}

func TestAddTenantOccupiesPropertyAfterRefresh(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.AddTenant(context.Background(), core.TenantInput{
		Name: "Sam Lee", PropertyID: "2", Email: "sam@example.com",
		LeaseStart: core.NewDate(2024, 1, 1), LeaseEnd: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)

	stats := f.store.Stats()
	assert.Equal(t, 3, stats.OccupiedProperties)
	assert.Equal(t, core.Dollars(10150), stats.TotalMonthlyRevenue)
	assert.Len(t, f.store.Tenants(), 3)
}

func TestToggleAndDelete(t *testing.T) {
	f := newFixture(t)
	var target core.Property
	for _, p := range f.store.Properties() {
		if p.ID == "4" {
			target = p
		}
	}

	res, err := f.coord.ToggleStatus(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, core.Occupied, res.Value.Status)
	assert.Equal(t, 3, f.store.Stats().OccupiedProperties)

	_, err = f.coord.DeleteProperty(context.Background(), "4")
	require.NoError(t, err)
	assert.Len(t, f.store.Properties(), 3)

	_, err = f.coord.DeleteProperty(context.Background(), "4")
	var reqErr *gateway.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestPublisherFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	f := newFixture(t, WithPublisher(pub, "client-a"))

	res, err := f.coord.AddPayment(context.Background(), core.PaymentInput{
		PropertyID: "1", TenantID: "t1", Amount: core.Dollars(3200),
		Date: core.NewDate(2024, 5, 1), Status: core.Pending,
	})
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Equal(t, 2, f.store.Stats().PendingPayments)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "payment.created", pub.msgs[0].RoutingKey())
	assert.Equal(t, "client-a", pub.msgs[0].Origin)
	assert.Equal(t, res.Value.ID.String(), pub.msgs[0].ID)
}
