// Package cart is the pre-purchase list of lines a shopper has picked.
package cart

import (
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/notice"
	"github.com/shopspring/decimal"
)

var (
	ErrEmpty           = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("product is out of stock")
)

// Item is one cart line. Name, price, image and stock are copied from the
// product when the line is added and may go stale afterwards.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	Items []Item
}

// Rules is the shipping policy applied by Totals.
type Rules struct {
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
}

var DefaultRules = Rules{
	FreeShippingOver: decimal.NewFromInt(500),
	ShippingFee:      decimal.NewFromInt(50),
}

type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func availableMsg(stock int) notice.Notice {
	return notice.Warn(fmt.Sprintf("Only %d items available", stock))
}

func (c *Cart) index(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) Get(id string) (Item, bool) {
	if i := c.index(id); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

// Add merges qty of p into the cart, clamping the line to p's current stock.
func (c *Cart) Add(p catalog.Product, qty int) ([]notice.Notice, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if !p.InStock() {
		return nil, ErrOutOfStock
	}

	var out []notice.Notice
	want := qty
	i := c.index(p.ID)
	if i >= 0 {
		want += c.Items[i].Quantity
	}
	if want > p.Stock {
		want = p.Stock
		out = append(out, availableMsg(p.Stock))
	}

	if i >= 0 {
		c.Items[i].Quantity = want
		c.Items[i].Stock = p.Stock
	} else {
		c.Items = append(c.Items, Item{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			ImageURL: p.ImageURL,
			Quantity: want,
			Stock:    p.Stock,
		})
	}
	return append(out, notice.Ok(p.Name+" added to cart!")), nil
}

func (c *Cart) Remove(id string) notice.Notice {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return notice.Ok("Item removed from cart")
}

// SetQuantity replaces a line's quantity. qty <= 0 removes the line and an
// unknown id changes nothing.
func (c *Cart) SetQuantity(id string, qty int) []notice.Notice {
	i := c.index(id)
	if i < 0 {
		return nil
	}
	if qty <= 0 {
		return []notice.Notice{c.Remove(id)}
	}
	if qty > c.Items[i].Stock {
		c.Items[i].Quantity = c.Items[i].Stock
		return []notice.Notice{availableMsg(c.Items[i].Stock)}
	}
	c.Items[i].Quantity = qty
	return nil
}

// Refresh replaces the stock snapshots with live values. Lines whose product
// is gone get stock 0.
func (c *Cart) Refresh(stocks map[string]int) {
	for i := range c.Items {
		c.Items[i].Stock = stocks[c.Items[i].ID]
	}
}

func (c *Cart) Clear() { c.Items = nil }

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Totals(r Rules) Totals {
	sub := decimal.Zero
	for _, it := range c.Items {
		sub = sub.Add(it.LineTotal())
	}
	return Price(sub, c.Count(), r)
}

// Price applies the shipping rule to a subtotal.
func Price(subtotal decimal.Decimal, count int, r Rules) Totals {
	ship := r.ShippingFee
	if subtotal.GreaterThan(r.FreeShippingOver) {
		ship = decimal.Zero
	}
	return Totals{Subtotal: subtotal, Shipping: ship, Total: subtotal.Add(ship), ItemCount: count}
}
