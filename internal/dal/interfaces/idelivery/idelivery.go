package idelivery

import (
	"context"

	"github.com/webshop-labs/checkout/internal/service/models/order"
)

// IDeliveryClient notifies the external delivery-processing endpoint of a
// newly persisted order.
type IDeliveryClient interface {
	NotifyOrderCreated(ctx context.Context, o order.Order) error
}
