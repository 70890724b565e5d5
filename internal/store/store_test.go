package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/core"
	"propmanager/internal/gateway"
	"propmanager/internal/gateway/memory"
)

// scriptedReader serves properties from a per-call script; tenants and
// payments come from fixed fields.
type scriptedReader struct {
	mu       sync.Mutex
	calls    int
	props    func(ctx context.Context, call int) ([]core.Property, error)
	tenants  []core.Tenant
	payments []core.Payment
	tenErr   error
}

func (r *scriptedReader) ListProperties(ctx context.Context) ([]core.Property, error) {
	r.mu.Lock()
	r.calls++
	call := r.calls
	r.mu.Unlock()
	return r.props(ctx, call)
}

func (r *scriptedReader) ListTenants(context.Context) ([]core.Tenant, error) {
	return r.tenants, r.tenErr
}

func (r *scriptedReader) ListPayments(context.Context) ([]core.Payment, error) {
	return r.payments, nil
}

func TestRefreshLoadsSeededPortfolio(t *testing.T) {
	s := New(memory.NewSeeded(memory.Options{}))
	assert.Equal(t, uint64(0), s.Generation())
	assert.Equal(t, core.DashboardStats{}, s.Stats())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Properties(), 4)
	assert.Len(t, s.Tenants(), 2)
	assert.Len(t, s.Payments(), 3)

	stats := s.Stats()
	assert.Equal(t, 4, stats.TotalProperties)
	assert.Equal(t, core.Dollars(8300), stats.TotalMonthlyRevenue)

	st := s.Status()
	assert.False(t, st.Loading)
	assert.Equal(t, uint64(1), st.Generation)
	assert.NoError(t, st.LastErr)
	assert.False(t, st.RefreshedAt.IsZero())
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New(memory.NewSeeded(memory.Options{}))
	require.NoError(t, s.Refresh(context.Background()))

	props := s.Properties()
	props[0].Status = core.Vacant
	assert.Equal(t, core.Occupied, s.Properties()[0].Status)

	snap := s.Snapshot()
	snap.Payments[0].Status = core.Pending
	assert.Equal(t, core.Paid, s.Payments()[0].Status)
}

func TestFailedRefreshKeepsSnapshot(t *testing.T) {
	boom := &gateway.RequestError{StatusCode: 500, Message: "Server error. Please try again later."}
	r := &scriptedReader{
		props: func(_ context.Context, call int) ([]core.Property, error) {
			return []core.Property{{ID: "1", Status: core.Occupied, MonthlyRent: core.Dollars(100)}}, nil
		},
		tenants: []core.Tenant{{ID: "t1"}},
	}
	s := New(r)
	require.NoError(t, s.Refresh(context.Background()))
	before := s.Snapshot()

	// One of three fails: nothing is applied, not even the two that succeeded.
	r.tenErr = boom
	err := s.Refresh(context.Background())
	var reqErr *gateway.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 500, reqErr.StatusCode)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 2, r.calls, "no retry")
	st := s.Status()
	assert.Equal(t, uint64(1), st.Generation)
	assert.ErrorIs(t, st.LastErr, boom)

	r.tenErr = nil
	require.NoError(t, s.Refresh(context.Background()))
	assert.NoError(t, s.Status().LastErr)
}

func TestFailedFirstRefreshLeavesEmptySnapshot(t *testing.T) {
	r := &scriptedReader{props: func(context.Context, int) ([]core.Property, error) {
		return nil, &gateway.NetworkError{Method: "GET", URL: "/properties", Timeout: true}
	}}
	s := New(r)
	err := s.Refresh(context.Background())
	assert.True(t, gateway.IsTimeout(err))
	assert.Empty(t, s.Properties())
	assert.Equal(t, uint64(0), s.Generation())
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	r := &scriptedReader{props: func(_ context.Context, call int) ([]core.Property, error) {
		if call == 1 {
			close(started)
			<-release
			return []core.Property{{ID: "old"}}, nil
		}
		return []core.Property{{ID: "new"}}, nil
	}}
	s := New(r)

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Refresh(context.Background()) }()
	<-started
	assert.True(t, s.Status().Loading)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, core.ID("new"), s.Properties()[0].ID)

	close(release)
	select {
	case err := <-firstDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first refresh did not finish")
	}

	assert.Equal(t, core.ID("new"), s.Properties()[0].ID, "older response must not overwrite newer")
	assert.Equal(t, uint64(2), s.Generation())
	assert.False(t, s.Status().Loading)
}

func TestStatsMemoizedPerGeneration(t *testing.T) {
	rent := core.Dollars(1000)
	r := &scriptedReader{props: func(_ context.Context, call int) ([]core.Property, error) {
		return []core.Property{{ID: "1", Status: core.Occupied, MonthlyRent: core.Money{Cents: rent.Cents * int64(call)}}}, nil
	}}
	s := New(r)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, core.Dollars(1000), s.Stats().TotalMonthlyRevenue)
	_ = s.Stats()
	hits, misses := s.stats.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, core.Dollars(2000), s.Stats().TotalMonthlyRevenue)
}

func TestSubscribeReceivesGenerations(t *testing.T) {
	s := New(memory.NewSeeded(memory.Options{}))
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Refresh(context.Background()))
	select {
	case gen := <-ch:
		assert.Equal(t, uint64(1), gen)
	case <-time.After(time.Second):
		t.Fatal("no notification")
	}

	cancel()
	require.NoError(t, s.Refresh(context.Background()))
	select {
	case <-ch:
		t.Fatal("unsubscribed channel notified")
	default:
	}
}
