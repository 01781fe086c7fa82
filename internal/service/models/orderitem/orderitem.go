package orderitem

import (
	"github.com/shopspring/decimal"
)

// ItemOrdered is a frozen copy of the catalog data an order line was
// created from. It is intentionally decoupled from the catalog item's
// current state so historical orders stay stable.
type ItemOrdered struct {
	CatalogItemID int64  `json:"catalogItemId"`
	ProductName   string `json:"productName"`
	PictureURI    string `json:"pictureUri"`
}

// OrderItem represents a line within an order.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ItemOrdered ItemOrdered     `json:"itemOrdered"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Units       int             `json:"units"`
}

// Subtotal returns unit price times units for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Units)))
}
