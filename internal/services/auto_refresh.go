package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// AutoRefresher refreshes the store on a fixed interval. A failed tick is
// only logged; the store keeps its previous snapshot and records the error.
type AutoRefresher struct {
	store    Refresher
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewAutoRefresher(store Refresher, interval time.Duration) *AutoRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoRefresher{store: store, interval: interval}
}

// Start begins the loop. Returns an error if already running. The loop
// also ends when ctx is done.
func (a *AutoRefresher) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("auto refresher is already running")
	}
	a.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	a.stopCh, a.doneCh = stopCh, doneCh
	a.mu.Unlock()

	go a.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Auto refresh started", "interval", a.interval)
	return nil
}

// Stop ends the loop and waits for an in-flight refresh to finish. If ctx
// expires first the loop still winds down in the background; a later Stop
// waits for it again.
func (a *AutoRefresher) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}
	doneCh := a.doneCh
	a.mu.Unlock()

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Auto refresh stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Auto refresh stop timed out")
		return ctx.Err()
	}
}

func (a *AutoRefresher) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AutoRefresher) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		a.mu.Lock()
		if a.doneCh == doneCh {
			a.running = false
			a.stopCh = nil
		}
		a.mu.Unlock()
		close(doneCh)
	}()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if err := a.store.Refresh(ctx); err != nil {
				slog.WarnContext(ctx, "Scheduled refresh failed", "error", err)
			}
		}
	}
}
