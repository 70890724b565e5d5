// Package store holds the client-side snapshot of properties, tenants and
// payments, and refreshes it from the remote gateway.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"propmanager/internal/cache"
	"propmanager/internal/core"
	"propmanager/internal/gateway"
)

// Snapshot is one consistent view of the three collections. All three
// lists always come from the same refresh.
type Snapshot struct {
	Properties  []core.Property
	Tenants     []core.Tenant
	Payments    []core.Payment
	Generation  uint64
	RefreshedAt time.Time
}

// Status is what a view needs for its loading and error indicators.
type Status struct {
	Loading     bool
	Generation  uint64
	RefreshedAt time.Time
	LastErr     error
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	reader gateway.Reader
	logger *slog.Logger
	now    func() time.Time

	issued   atomic.Uint64
	inflight atomic.Int32

	mu      sync.RWMutex
	snap    Snapshot
	errSeq  uint64
	lastErr error
	subs    map[int]chan uint64
	nextSub int

	stats *cache.LRU[uint64, core.DashboardStats]
}

func New(reader gateway.Reader, opts ...Option) *Store {
	s := &Store{
		reader: reader,
		logger: slog.Default(),
		now:    time.Now,
		subs:   map[int]chan uint64{},
		stats:  cache.NewLRU[uint64, core.DashboardStats](4, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches all three collections concurrently and replaces the
// snapshot only if every fetch succeeded. On failure the previous snapshot
// stays in place and the error is returned; nothing is retried.
//
// Each call takes a sequence number. A result older than the snapshot
// already applied is dropped and Refresh returns nil.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.issued.Add(1)
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	start := s.now()
	var (
		properties []core.Property
		tenants    []core.Tenant
		payments   []core.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.reader.ListProperties(gctx)
		if err != nil {
			return fmt.Errorf("list properties: %w", err)
		}
		properties = out
		return nil
	})
	g.Go(func() error {
		out, err := s.reader.ListTenants(gctx)
		if err != nil {
			return fmt.Errorf("list tenants: %w", err)
		}
		tenants = out
		return nil
	})
	g.Go(func() error {
		out, err := s.reader.ListPayments(gctx)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		payments = out
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	if err != nil {
		if seq > s.errSeq && seq > s.snap.Generation {
			s.errSeq = seq
			s.lastErr = err
		}
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "Refresh failed, keeping previous snapshot",
			"seq", seq, "generation", s.Generation(), "error", err)
		return err
	}
	if seq <= s.snap.Generation {
		applied := s.snap.Generation
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarding stale refresh", "seq", seq, "applied", applied)
		return nil
	}
	s.snap = Snapshot{
		Properties:  nonNil(properties),
		Tenants:     nonNil(tenants),
		Payments:    nonNil(payments),
		Generation:  seq,
		RefreshedAt: s.now(),
	}
	if seq > s.errSeq {
		s.lastErr = nil
	}
	subs := make([]chan uint64, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- seq:
		default:
		}
	}
	s.logger.DebugContext(ctx, "Snapshot refreshed",
		"generation", seq,
		"properties", len(properties),
		"tenants", len(tenants),
		"payments", len(payments),
		"duration_ms", s.now().Sub(start).Milliseconds())
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Properties returns a copy of the current property list.
func (s *Store) Properties() []core.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Property(nil), s.snap.Properties...)
}

func (s *Store) Tenants() []core.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Tenant(nil), s.snap.Tenants...)
}

func (s *Store) Payments() []core.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Payment(nil), s.snap.Payments...)
}

// Snapshot returns a copy of the whole current view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Properties = append([]core.Property(nil), s.snap.Properties...)
	out.Tenants = append([]core.Tenant(nil), s.snap.Tenants...)
	out.Payments = append([]core.Payment(nil), s.snap.Payments...)
	return out
}

// Stats returns the dashboard figures for the current snapshot. The value
// is computed once per generation.
func (s *Store) Stats() core.DashboardStats {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	return s.stats.GetOrCompute(snap.Generation, func() core.DashboardStats {
		return core.ComputeStats(snap.Properties, snap.Payments)
	})
}

// Generation is zero until the first successful refresh.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Generation
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Loading:     s.inflight.Load() > 0,
		Generation:  s.snap.Generation,
		RefreshedAt: s.snap.RefreshedAt,
		LastErr:     s.lastErr,
	}
}

// Subscribe returns a channel that receives the generation of every newly
// applied snapshot. Slow readers miss intermediate generations. Call the
// returned func to unsubscribe.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
