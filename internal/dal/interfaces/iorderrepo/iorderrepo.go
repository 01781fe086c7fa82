package iorderrepo

import (
	"context"

	"github.com/webshop-labs/checkout/internal/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
// Insert is append-only; orders are never updated or deleted here.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
}
