package cart

import (
	"testing"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/notice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price int64, stock int) catalog.Product {
	return catalog.Product{ID: id, Name: "Item " + id, Price: decimal.NewFromInt(price), Stock: stock}
}

func TestTotalsExample(t *testing.T) {
	c := Cart{Items: []Item{{ID: "p1", Price: decimal.NewFromInt(100), Quantity: 2, Stock: 5}}}
	got := c.Totals(DefaultRules)

	assert.Equal(t, "200", got.Subtotal.String())
	assert.Equal(t, "50", got.Shipping.String())
	assert.Equal(t, "250", got.Total.String())
	assert.Equal(t, 2, got.ItemCount)
}

func TestTotalsShippingThreshold(t *testing.T) {
	cases := []struct {
		subtotal string
		shipping string
	}{
		{"0", "50"},
		{"499.99", "50"},
		{"500", "50"},
		{"500.01", "0"},
		{"1200", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.subtotal, func(t *testing.T) {
			price := decimal.RequireFromString(tc.subtotal)
			c := Cart{Items: []Item{{ID: "p", Price: price, Quantity: 1, Stock: 1}}}
			got := c.Totals(DefaultRules)
			assert.Equal(t, tc.shipping, got.Shipping.String())
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Shipping)))
		})
	}
}

func TestAddMergesAndClamps(t *testing.T) {
	var c Cart
	p := product("p1", 100, 3)

	ns, err := c.Add(p, 2)
	require.NoError(t, err)
	assert.Equal(t, []notice.Notice{notice.Ok("Item p1 added to cart!")}, ns)

	ns, err = c.Add(p, 5)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, notice.Warn("Only 3 items available"), ns[0])
	assert.Equal(t, notice.Success, ns[1].Level)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddNewLineClampsToStock(t *testing.T) {
	var c Cart
	ns, err := c.Add(product("p1", 10, 2), 9)
	require.NoError(t, err)
	assert.Equal(t, notice.Warning, ns[0].Level)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddRejects(t *testing.T) {
	var c Cart
	_, err := c.Add(product("p1", 10, 0), 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = c.Add(product("p1", 10, 4), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestSetQuantity(t *testing.T) {
	c := Cart{Items: []Item{
		{ID: "a", Quantity: 1, Stock: 4},
		{ID: "b", Quantity: 2, Stock: 2},
	}}

	assert.Nil(t, c.SetQuantity("a", 3))
	assert.Equal(t, 3, c.Items[0].Quantity)

	ns := c.SetQuantity("a", 10)
	assert.Equal(t, []notice.Notice{notice.Warn("Only 4 items available")}, ns)
	assert.Equal(t, 4, c.Items[0].Quantity)

	assert.Nil(t, c.SetQuantity("zzz", 1))
	assert.Len(t, c.Items, 2)

	ns = c.SetQuantity("b", 0)
	assert.Equal(t, []notice.Notice{notice.Ok("Item removed from cart")}, ns)
	_, ok := c.Get("b")
	assert.False(t, ok)

	c.SetQuantity("a", -1)
	assert.True(t, c.IsEmpty())
}

func TestRefreshZeroesMissingProducts(t *testing.T) {
	c := Cart{Items: []Item{{ID: "a", Stock: 4}, {ID: "b", Stock: 2}}}
	c.Refresh(map[string]int{"a": 1})
	assert.Equal(t, 1, c.Items[0].Stock)
	assert.Equal(t, 0, c.Items[1].Stock)
}
