package basket

import (
	"github.com/shopspring/decimal"
)

// Basket is a buyer's in-progress selection of catalog items. It is
// mutated elsewhere; checkout only reads it.
type Basket struct {
	ID      int64  `json:"id"`
	BuyerID string `json:"buyerId"`
	Items   []Item `json:"items"`
}

// Item is a single basket line. UnitPrice is the price captured when the
// line was added, not the catalog item's current price.
type Item struct {
	ID            int64           `json:"id"`
	BasketID      int64           `json:"basketId"`
	CatalogItemID int64           `json:"catalogItemId"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
}

// CatalogItemIDs returns the distinct catalog item ids referenced by the
// basket, in first-seen order.
func (b *Basket) CatalogItemIDs() []int64 {
	seen := make(map[int64]struct{}, len(b.Items))
	ids := make([]int64, 0, len(b.Items))
	for _, item := range b.Items {
		if _, ok := seen[item.CatalogItemID]; ok {
			continue
		}
		seen[item.CatalogItemID] = struct{}{}
		ids = append(ids, item.CatalogItemID)
	}

	return ids
}
