package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmanager/internal/amqp"
)

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls++
	return r.err
}

type sliceConsumer []*amqp.MutationMessage

func (s sliceConsumer) ConsumeMutations(ctx context.Context, handler func(context.Context, *amqp.MutationMessage) error) error {
	for _, msg := range s {
		_ = handler(ctx, msg)
	}
	return context.Canceled
}

func TestRefreshWorkerSkipsOwnEvents(t *testing.T) {
	r := &countingRefresher{}
	w := NewRefreshWorker(r, "me")

	require.NoError(t, w.HandleMutation(context.Background(), amqp.NewMutationMessage("property", amqp.Created, "1", "me")))
	assert.Equal(t, 0, r.calls)

	require.NoError(t, w.HandleMutation(context.Background(), amqp.NewMutationMessage("property", amqp.Created, "1", "other")))
	assert.Equal(t, 1, r.calls)
}

func TestRefreshWorkerReportsRefreshFailure(t *testing.T) {
	r := &countingRefresher{err: errors.New("timeout")}
	w := NewRefreshWorker(r, "me")

	err := w.HandleMutation(context.Background(), amqp.NewMutationMessage("tenant", amqp.Deleted, "t1", "other"))
	assert.ErrorContains(t, err, "tenant.deleted")
}

func TestRefreshWorkerRun(t *testing.T) {
	r := &countingRefresher{}
	w := NewRefreshWorker(r, "me")
	events := sliceConsumer{
		amqp.NewMutationMessage("payment", amqp.Created, "p9", "other"),
		amqp.NewMutationMessage("payment", amqp.Created, "p10", "me"),
		amqp.NewMutationMessage("property", amqp.Updated, "2", "third"),
	}

	err := w.Run(context.Background(), events)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, r.calls)
}
