// Package view turns domain values into display-ready view-models. Handlers
// serve them as JSON and Renderer turns the same values into HTML.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/enquiries"
	"github.com/ariefcatur/go-storefront/internal/money"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/shopspring/decimal"
)

const (
	BadgeNew        = "New"
	BadgeOutOfStock = "Out of Stock"
)

// Presenter holds what formatting depends on.
type Presenter struct {
	Symbol string
	Now    func() time.Time
}

func (pr Presenter) money(d decimal.Decimal) string {
	sym := pr.Symbol
	if sym == "" {
		sym = money.DefaultSymbol
	}
	return money.Format(d, sym)
}

func (pr Presenter) now() time.Time {
	if pr.Now != nil {
		return pr.Now()
	}
	return time.Now()
}

type ProductCard struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	StockLabel  string `json:"stock_label"`
	Badge       string `json:"badge,omitempty"`
	InStock     bool   `json:"in_stock"`
	Action      string `json:"action"`
}

func (pr Presenter) ProductCard(p catalog.Product) ProductCard {
	c := ProductCard{
		ID:          p.ID,
		URL:         "/product/" + p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       pr.money(p.Price),
		Stock:       p.Stock,
		InStock:     p.InStock(),
	}
	switch {
	case !c.InStock:
		c.Badge = BadgeOutOfStock
		c.StockLabel = "Out of Stock"
		c.Action = "Out of Stock"
	default:
		if catalog.IsNew(p, pr.now()) {
			c.Badge = BadgeNew
		}
		c.StockLabel = fmt.Sprintf("%d in stock", p.Stock)
		c.Action = "Add to Cart"
	}
	return c
}

func (pr Presenter) ProductCards(ps []catalog.Product) []ProductCard {
	out := make([]ProductCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, pr.ProductCard(p))
	}
	return out
}

type ProductDetail struct {
	ProductCard
	MaxQuantity int    `json:"max_quantity"`
	Updated     string `json:"updated,omitempty"`
}

func (pr Presenter) ProductDetail(p catalog.Product) ProductDetail {
	d := ProductDetail{ProductCard: pr.ProductCard(p), MaxQuantity: max(p.Stock, 0)}
	if !p.UpdatedAt.IsZero() {
		d.Updated = p.UpdatedAt.Format("2/1/2006")
	}
	return d
}

type CartLine struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	LineTotal string `json:"line_total"`
}

type CartView struct {
	Empty     bool       `json:"empty"`
	Lines     []CartLine `json:"lines"`
	Subtotal  string     `json:"subtotal"`
	Shipping  string     `json:"shipping"`
	Total     string     `json:"total"`
	ItemCount int        `json:"item_count"`
}

// CartView shows shipping as "FREE" when it costs nothing.
func (pr Presenter) CartView(c cart.Cart, t cart.Totals) CartView {
	v := CartView{
		Empty:     c.IsEmpty(),
		Lines:     make([]CartLine, 0, len(c.Items)),
		Subtotal:  pr.money(t.Subtotal),
		Shipping:  pr.money(t.Shipping),
		Total:     pr.money(t.Total),
		ItemCount: t.ItemCount,
	}
	if t.Shipping.IsZero() {
		v.Shipping = "FREE"
	}
	for _, it := range c.Items {
		v.Lines = append(v.Lines, CartLine{
			ID:        it.ID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			Price:     pr.money(it.Price),
			Quantity:  it.Quantity,
			Stock:     it.Stock,
			LineTotal: pr.money(it.LineTotal()),
		})
	}
	return v
}

type OrderConfirmation struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
	Title   string `json:"title"`
}

func (pr Presenter) OrderConfirmation(o orders.Order) OrderConfirmation {
	return OrderConfirmation{OrderID: o.ID, Total: pr.money(o.Total), Title: "Order Placed Successfully!"}
}

type OrderRow struct {
	ID     string `json:"id"`
	Ref    string `json:"ref"`
	Email  string `json:"email"`
	Items  string `json:"items"`
	Total  string `json:"total"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// ShortRef is "#" plus the last six characters of id, upper-cased.
func ShortRef(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "#" + strings.ToUpper(id)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func (pr Presenter) OrderRow(o orders.Order) OrderRow {
	status := string(o.Status)
	if status == "" {
		status = string(orders.StatusPending)
	}
	return OrderRow{
		ID:     o.ID,
		Ref:    ShortRef(o.ID),
		Email:  orNA(o.UserEmail),
		Items:  fmt.Sprintf("%d items", len(o.Items)),
		Total:  pr.money(o.Total),
		Status: status,
		Date:   o.CreatedAt.Format("2/1/2006"),
	}
}

func (pr Presenter) OrderRows(os []orders.Order) []OrderRow {
	out := make([]OrderRow, 0, len(os))
	for _, o := range os {
		out = append(out, pr.OrderRow(o))
	}
	return out
}

type EnquiryCard struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

func (pr Presenter) EnquiryCard(e enquiries.Enquiry) EnquiryCard {
	c := EnquiryCard{
		ID:      e.ID,
		Sender:  e.Name,
		Date:    e.CreatedAt.Format("2 Jan 2006"),
		Subject: e.Subject,
		Message: e.Message,
		Email:   orNA(e.Email),
		Phone:   orNA(e.Phone),
	}
	if strings.TrimSpace(c.Sender) == "" {
		c.Sender = "Anonymous"
	}
	if strings.TrimSpace(c.Subject) == "" {
		c.Subject = "No subject"
	}
	return c
}

func (pr Presenter) EnquiryCards(es []enquiries.Enquiry) []EnquiryCard {
	out := make([]EnquiryCard, 0, len(es))
	for _, e := range es {
		out = append(out, pr.EnquiryCard(e))
	}
	return out
}
