package checkoutsvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/webshop-labs/checkout/internal/dal/interfaces/idelivery"
	"github.com/webshop-labs/checkout/internal/dal/interfaces/ieventsrepo"
	"github.com/webshop-labs/checkout/internal/service/models/order"
)

// NotificationResult records how each downstream dispatch went. One
// consumer's failure never suppresses the other's notification.
type NotificationResult struct {
	PublishErr error
	WebhookErr error
}

// EventPublished reports whether the broker publish succeeded.
func (r NotificationResult) EventPublished() bool {
	return r.PublishErr == nil
}

// DeliveryNotified reports whether the delivery webhook call succeeded.
func (r NotificationResult) DeliveryNotified() bool {
	return r.WebhookErr == nil
}

// NotificationFanout dispatches the two post-persistence notifications:
// the order-created event to the broker and the delivery-processing
// webhook call.
type NotificationFanout struct {
	eventsRepo     ieventsrepo.IOrderEventsRepository
	deliveryClient idelivery.IDeliveryClient
	timeout        time.Duration
}

// NewNotificationFanout creates a new NotificationFanout.
func NewNotificationFanout(
	eventsRepo ieventsrepo.IOrderEventsRepository,
	deliveryClient idelivery.IDeliveryClient,
) *NotificationFanout {
	timeoutSeconds := viper.GetInt("checkout.notify_timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 30
	}

	return &NotificationFanout{
		eventsRepo:     eventsRepo,
		deliveryClient: deliveryClient,
		timeout:        time.Duration(timeoutSeconds) * time.Second,
	}
}

// Dispatch sends both notifications concurrently and waits for both.
// The request context is deliberately not used: once the order is
// persisted, caller cancellation must not suppress notifications.
func (f *NotificationFanout) Dispatch(o order.Order) NotificationResult {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	var res NotificationResult
	var g errgroup.Group

	g.Go(func() error {
		res.PublishErr = f.eventsRepo.PublishOrderCreated(ctx, o)

		return nil
	})
	g.Go(func() error {
		res.WebhookErr = f.deliveryClient.NotifyOrderCreated(ctx, o)

		return nil
	})

	// Each dispatch records its own error; the group only synchronizes.
	_ = g.Wait()

	if res.PublishErr != nil {
		slog.Error("Failed to publish order created event", "order_id", o.ID, "error", res.PublishErr)
	}
	if res.WebhookErr != nil {
		slog.Error("Failed to notify delivery processor", "order_id", o.ID, "error", res.WebhookErr)
	}

	return res
}
