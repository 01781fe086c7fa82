package ieventsrepo

import (
	"context"

	"github.com/webshop-labs/checkout/internal/service/models/order"
)

// IOrderEventsRepository publishes order lifecycle events to the broker.
type IOrderEventsRepository interface {
	PublishOrderCreated(ctx context.Context, o order.Order) error
}
