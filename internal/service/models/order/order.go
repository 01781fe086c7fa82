package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/webshop-labs/checkout/internal/service/models/orderitem"
)

// Address is the shipping destination, copied by value into the order.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

// Order is an immutable snapshot of a purchase. Once persisted its lines
// and total never change.
type Order struct {
	ID            int64                 `json:"id"`
	BuyerID       string                `json:"buyerId"`
	ShipToAddress Address               `json:"shipToAddress"`
	Items         []orderitem.OrderItem `json:"items"`
	Total         decimal.Decimal       `json:"total"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// New assembles an order from already reconciled lines. The total is
// computed here, once, and never recomputed afterwards.
func New(buyerID string, shipTo Address, items []orderitem.OrderItem) Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return Order{
		BuyerID:       buyerID,
		ShipToAddress: shipTo,
		Items:         items,
		Total:         total,
	}
}
