package ibasketrepo

import (
	"context"

	"github.com/webshop-labs/checkout/internal/service/models/basket"
)

// IBasketRepository is an interface for basket postgres repository.
// LoadWithItems returns nil without an error when the basket is absent.
type IBasketRepository interface {
	LoadWithItems(ctx context.Context, basketID int64) (*basket.Basket, error)
}
