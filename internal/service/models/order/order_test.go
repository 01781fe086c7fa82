package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/webshop-labs/checkout/internal/service/models/orderitem"
)

func testItems() []orderitem.OrderItem {
	return []orderitem.OrderItem{
		{
			ItemOrdered: orderitem.ItemOrdered{CatalogItemID: 1, ProductName: "Widget"},
			UnitPrice:   decimal.RequireFromString("9.99"),
			Units:       2,
		},
		{
			ItemOrdered: orderitem.ItemOrdered{CatalogItemID: 2, ProductName: "Gadget"},
			UnitPrice:   decimal.RequireFromString("5.00"),
			Units:       1,
		},
	}
}

func TestNew_TotalIsSumOfLines(t *testing.T) {
	o := New("B1", Address{City: "Springfield"}, testItems())

	require.True(t, o.Total.Equal(decimal.RequireFromString("24.98")),
		"total is %s", o.Total)
}

func TestNew_IsPure(t *testing.T) {
	items := testItems()

	first := New("B1", Address{City: "Springfield"}, items)
	second := New("B1", Address{City: "Springfield"}, items)

	require.Equal(t, first.Items, second.Items)
	require.True(t, first.Total.Equal(second.Total))
	require.Equal(t, first.ShipToAddress, second.ShipToAddress)
}

func TestNew_EmptyItemsZeroTotal(t *testing.T) {
	o := New("B1", Address{}, nil)

	require.True(t, o.Total.IsZero())
}
