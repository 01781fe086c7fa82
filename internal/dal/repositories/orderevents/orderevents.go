package orderevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/webshop-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/webshop-labs/checkout/internal/dal/rabbitmq"
	"github.com/webshop-labs/checkout/internal/service/models/order"
	"github.com/webshop-labs/checkout/internal/service/models/outbox"
)

// orderCreatedItem is the wire shape of one line in the order-created
// event. Kept separate from the domain model so the broker contract does
// not drift with internal changes.
type orderCreatedItem struct {
	CatalogItemID int64 `json:"catalogItemId"`
	Units         int   `json:"units"`
}

// OrderEventsRabbitMQRepository publishes order-created events to the
// orders queue. Failed publishes are parked in the outbox for the retry
// worker; the original error is still returned to the caller.
type OrderEventsRabbitMQRepository struct {
	client     *rabbitmq.Client
	queue      amqp.Queue
	outboxRepo ioutboxrepo.IOutboxRepository
}

func NewOrderEventsRabbitMQRepository(
	client *rabbitmq.Client,
	outboxRepo ioutboxrepo.IOutboxRepository,
) *OrderEventsRabbitMQRepository {
	queueName := viper.GetString("rabbitmq.orders_queue")
	if queueName == "" {
		queueName = "orders"
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &OrderEventsRabbitMQRepository{
		client:     client,
		queue:      queue,
		outboxRepo: outboxRepo,
	}
}

// PublishOrderCreated sends one event per order with a
// {catalogItemId, units} pair for every order line.
func (r *OrderEventsRabbitMQRepository) PublishOrderCreated(
	ctx context.Context,
	o order.Order,
) error {
	body, err := orderCreatedPayload(o)
	if err != nil {
		return fmt.Errorf("failed to marshal order created event: %w", err)
	}

	err = r.client.Channel().Publish(
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		r.parkInOutbox(ctx, body, err)

		return fmt.Errorf("failed to publish order created event: %w", err)
	}

	return nil
}

// parkInOutbox records a failed publish so the outbox worker can retry
// it later. Parking failures are logged, not propagated; the publish
// error is what the caller needs to see.
func (r *OrderEventsRabbitMQRepository) parkInOutbox(
	ctx context.Context,
	body []byte,
	publishErr error,
) {
	if r.outboxRepo == nil {
		return
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()
	msg := outbox.OutboxMessage{
		QueueName:   r.queue.Name,
		RoutingKey:  r.queue.Name,
		Payload:     body,
		ContentType: "application/json",
		MaxRetries:  maxRetries,
		LastError:   publishErr.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}

	if err := r.outboxRepo.Insert(ctx, msg); err != nil {
		slog.Error("Failed to park order created event in outbox", "error", err)
	}
}

func orderCreatedPayload(o order.Order) ([]byte, error) {
	items := make([]orderCreatedItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderCreatedItem{
			CatalogItemID: item.ItemOrdered.CatalogItemID,
			Units:         item.Units,
		}
	}

	return json.Marshal(items)
}
