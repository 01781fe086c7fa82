package basket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogItemIDs_DeduplicatesPreservingOrder(t *testing.T) {
	b := Basket{
		Items: []Item{
			{CatalogItemID: 5},
			{CatalogItemID: 3},
			{CatalogItemID: 5},
			{CatalogItemID: 7},
			{CatalogItemID: 3},
		},
	}

	require.Equal(t, []int64{5, 3, 7}, b.CatalogItemIDs())
}

func TestCatalogItemIDs_EmptyBasket(t *testing.T) {
	b := Basket{}

	require.Empty(t, b.CatalogItemIDs())
}
