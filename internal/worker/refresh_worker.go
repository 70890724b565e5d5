package worker

import (
	"context"
	"fmt"
	"log/slog"

	"propmanager/internal/amqp"
	"propmanager/internal/services"
)

// Consumer delivers mutation events until ctx is done.
type Consumer interface {
	ConsumeMutations(ctx context.Context, handler func(context.Context, *amqp.MutationMessage) error) error
}

// RefreshWorker refreshes the store when another client reports a write.
// Events carrying this client's own origin are skipped: the coordinator
// already refreshed after its own writes.
type RefreshWorker struct {
	store  services.Refresher
	origin string
}

func NewRefreshWorker(store services.Refresher, origin string) *RefreshWorker {
	return &RefreshWorker{store: store, origin: origin}
}

// HandleMutation processes a single mutation event.
func (w *RefreshWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	if msg.Origin != "" && msg.Origin == w.origin {
		slog.DebugContext(ctx, "Skipping own mutation event", "routing_key", msg.RoutingKey())
		return nil
	}

	slog.InfoContext(ctx, "Remote change received, refreshing",
		"routing_key", msg.RoutingKey(),
		"id", msg.ID,
		"origin", msg.Origin)

	if err := w.store.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after %s: %w", msg.RoutingKey(), err)
	}
	return nil
}

// Run consumes events until ctx is cancelled.
func (w *RefreshWorker) Run(ctx context.Context, consumer Consumer) error {
	return consumer.ConsumeMutations(ctx, w.HandleMutation)
}
