package services

import (
	"context"
	"log/slog"
	"sync"

	"propmanager/internal/amqp"
	"propmanager/internal/core"
	"propmanager/internal/gateway"
)

// MutationState is the lifecycle of a single submission.
type MutationState string

const (
	StateIdle       MutationState = "idle"
	StateSubmitting MutationState = "submitting"
	StateRefreshing MutationState = "refreshing"
	StateSettled    MutationState = "settled"
)

// Result is the outcome of a write that reached the backend. Stale is set
// when the write succeeded but the follow-up refresh failed; the local
// snapshot then predates the write until the next successful refresh.
type Result[T any] struct {
	Value      T
	Stale      bool
	RefreshErr error
}

// Refresher reloads the local snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Publisher announces successful writes to other clients.
type Publisher interface {
	PublishMutation(ctx context.Context, msg *amqp.MutationMessage) error
}

// Observer receives every state transition. err is set only on the
// transition to settled after a failed write.
type Observer func(op string, state MutationState, err error)

type CoordinatorOption func(*Coordinator)

// WithPublisher enables change events tagged with origin.
func WithPublisher(p Publisher, origin string) CoordinatorOption {
	return func(c *Coordinator) {
		c.publisher = p
		c.origin = origin
	}
}

func WithObserver(o Observer) CoordinatorOption {
	return func(c *Coordinator) { c.observer = o }
}

func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// Coordinator sends writes to the gateway and keeps the store in step
// with them: every successful write is followed by a full refresh.
type Coordinator struct {
	writer    gateway.Writer
	store     Refresher
	publisher Publisher
	origin    string
	observer  Observer
	logger    *slog.Logger

	mu    sync.Mutex
	state MutationState
}

func NewCoordinator(writer gateway.Writer, store Refresher, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		writer: writer,
		store:  store,
		logger: slog.Default(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state of the most recent submission.
func (c *Coordinator) State() MutationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) transition(op string, s MutationState, err error) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.observer != nil {
		c.observer(op, s, err)
	}
}

func (c *Coordinator) AddProperty(ctx context.Context, in core.PropertyInput) (Result[core.Property], error) {
	return submit(ctx, c, "add_property", in.Validate,
		func(ctx context.Context) (core.Property, error) { return c.writer.CreateProperty(ctx, in) },
		func(p core.Property) *amqp.MutationMessage {
			return amqp.NewMutationMessage("property", amqp.Created, p.ID.String(), c.origin)
		})
}

func (c *Coordinator) UpdateProperty(ctx context.Context, id core.ID, u core.PropertyUpdate) (Result[core.Property], error) {
	validate := func() error {
		if id.IsZero() {
			return &core.ValidationError{Entity: "property", Field: "id", Err: core.ErrEmptyPropertyID}
		}
		return u.Validate()
	}
	return submit(ctx, c, "update_property", validate,
		func(ctx context.Context) (core.Property, error) { return c.writer.UpdateProperty(ctx, id, u) },
		func(core.Property) *amqp.MutationMessage {
			return amqp.NewMutationMessage("property", amqp.Updated, id.String(), c.origin)
		})
}

// ToggleStatus flips p between occupied and vacant.
func (c *Coordinator) ToggleStatus(ctx context.Context, p core.Property) (Result[core.Property], error) {
	next := p.Status.Toggle()
	return c.UpdateProperty(ctx, p.ID, core.PropertyUpdate{Status: &next})
}

func (c *Coordinator) DeleteProperty(ctx context.Context, id core.ID) (Result[struct{}], error) {
	validate := func() error {
		if id.IsZero() {
			return &core.ValidationError{Entity: "property", Field: "id", Err: core.ErrEmptyPropertyID}
		}
		return nil
	}
	return submit(ctx, c, "delete_property", validate,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, c.writer.DeleteProperty(ctx, id) },
		func(struct{}) *amqp.MutationMessage {
			return amqp.NewMutationMessage("property", amqp.Deleted, id.String(), c.origin)
		})
}

// AddTenant creates a tenant. The backend marks the property occupied; the
// refresh that follows brings that change into the store.
func (c *Coordinator) AddTenant(ctx context.Context, in core.TenantInput) (Result[core.Tenant], error) {
	return submit(ctx, c, "add_tenant", in.Validate,
		func(ctx context.Context) (core.Tenant, error) { return c.writer.CreateTenant(ctx, in) },
		func(t core.Tenant) *amqp.MutationMessage {
			return amqp.NewMutationMessage("tenant", amqp.Created, t.ID.String(), c.origin)
		})
}

func (c *Coordinator) RemoveTenant(ctx context.Context, id core.ID) (Result[struct{}], error) {
	validate := func() error {
		if id.IsZero() {
			return &core.ValidationError{Entity: "tenant", Field: "id", Err: core.ErrEmptyTenantID}
		}
		return nil
	}
	return submit(ctx, c, "remove_tenant", validate,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, c.writer.DeleteTenant(ctx, id) },
		func(struct{}) *amqp.MutationMessage {
			return amqp.NewMutationMessage("tenant", amqp.Deleted, id.String(), c.origin)
		})
}

func (c *Coordinator) AddPayment(ctx context.Context, in core.PaymentInput) (Result[core.Payment], error) {
	return submit(ctx, c, "add_payment", in.Validate,
		func(ctx context.Context) (core.Payment, error) { return c.writer.CreatePayment(ctx, in) },
		func(p core.Payment) *amqp.MutationMessage {
			return amqp.NewMutationMessage("payment", amqp.Created, p.ID.String(), c.origin)
		})
}

// submit runs validate, write, refresh. A validation or write error is
// returned as is and nothing is refreshed. After a successful write the
// refresh always runs; its failure is reported through Result, not err.
func submit[T any](
	ctx context.Context,
	c *Coordinator,
	op string,
	validate func() error,
	write func(context.Context) (T, error),
	event func(T) *amqp.MutationMessage,
) (Result[T], error) {
	if err := validate(); err != nil {
		return Result[T]{}, err
	}

	c.transition(op, StateSubmitting, nil)
	value, err := write(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Mutation failed", "operation", op, "error", err)
		c.transition(op, StateSettled, err)
		return Result[T]{}, err
	}

	res := Result[T]{Value: value}
	c.transition(op, StateRefreshing, nil)
	if err := c.store.Refresh(ctx); err != nil {
		c.logger.WarnContext(ctx, "Mutation succeeded but refresh failed, data is stale",
			"operation", op, "error", err)
		res.Stale = true
		res.RefreshErr = err
	}
	c.transition(op, StateSettled, nil)

	if c.publisher != nil {
		if err := c.publisher.PublishMutation(ctx, event(value)); err != nil {
			// The write is already done; other dashboards catch up on their next tick.
			c.logger.ErrorContext(ctx, "Failed to publish mutation event", "operation", op, "error", err)
		}
	}
	return res, nil
}
