package icatalogrepo

import (
	"context"

	"github.com/webshop-labs/checkout/internal/service/models/catalog"
)

// ICatalogRepository is an interface for catalog postgres repository.
// BatchLoad resolves all ids in one query; ids with no matching record
// are simply absent from the returned mapping.
type ICatalogRepository interface {
	BatchLoad(ctx context.Context, ids []int64) (map[int64]catalog.Item, error)
}
