package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/require"

	"github.com/webshop-labs/checkout/internal/service/models/outbox"
)

type fakeOutboxRepo struct {
	pending      []outbox.OutboxMessage
	deleted      []int64
	retryUpdates []int64
}

func (f *fakeOutboxRepo) Insert(context.Context, outbox.OutboxMessage) error {
	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.OutboxMessage, error) {
	return f.pending, nil
}

func (f *fakeOutboxRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeOutboxRepo) UpdateRetry(_ context.Context, id int64, _ int, _ string, _ time.Time) error {
	f.retryUpdates = append(f.retryUpdates, id)
	return nil
}

type fakePublisher struct {
	err       error
	published []amqp.Publishing
}

func (f *fakePublisher) Publish(_, _ string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func newTestWorker(repo *fakeOutboxRepo, pub *fakePublisher) *Worker {
	return &Worker{
		outboxRepo:   repo,
		pub:          pub,
		pollInterval: time.Second,
		batchSize:    10,
		stopCh:       make(chan struct{}),
	}
}

func TestProcessMessages_DeletesAfterPublish(t *testing.T) {
	repo := &fakeOutboxRepo{
		pending: []outbox.OutboxMessage{
			{ID: 1, QueueName: "orders", RoutingKey: "orders", Payload: []byte(`[]`), ContentType: "application/json"},
		},
	}
	pub := &fakePublisher{}
	w := newTestWorker(repo, pub)

	w.processMessages(context.Background())

	require.Len(t, pub.published, 1)
	require.Equal(t, []byte(`[]`), pub.published[0].Body)
	require.Equal(t, []int64{1}, repo.deleted)
	require.Empty(t, repo.retryUpdates)
}

func TestProcessMessages_SchedulesRetryOnFailure(t *testing.T) {
	repo := &fakeOutboxRepo{
		pending: []outbox.OutboxMessage{
			{ID: 2, QueueName: "orders", RoutingKey: "orders", Payload: []byte(`[]`)},
		},
	}
	pub := &fakePublisher{err: errors.New("channel closed")}
	w := newTestWorker(repo, pub)

	w.processMessages(context.Background())

	require.Empty(t, repo.deleted)
	require.Equal(t, []int64{2}, repo.retryUpdates)
}
