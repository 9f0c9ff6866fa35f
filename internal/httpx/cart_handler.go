package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/notice"
	"github.com/ariefcatur/go-storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

type cartReply struct {
	Items  []cart.Item   `json:"items"`
	Totals cart.Totals   `json:"totals"`
	View   view.CartView `json:"view"`
}

func (a *API) cartReply(c cart.Cart) cartReply {
	t := c.Totals(a.Rules)
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartReply{Items: items, Totals: t, View: a.Presenter.CartView(c, t)}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	c, err := a.Carts.Load(ctx, id.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if a.Pages != nil && wantsHTML(r) {
		reply := a.cartReply(c)
		a.render(w, r, "cart", view.CartPage{Page: a.page(ctx, "Cart", id, c.Count()), Cart: reply.View})
		return
	}
	ok(w, http.StatusOK, a.cartReply(c))
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (a *API) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decodeJSON(w, r, &req); err != nil || req.ProductID == "" {
		writeError(w, r, errBadRequest)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	p, err := a.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := a.Carts.Load(ctx, id.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ns, err := c.Add(p, qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.Carts.Save(ctx, id.UID, c); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, a.cartReply(c), ns...)
}

type setQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (a *API) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a.mutateCart(w, r, func(c *cart.Cart) []notice.Notice {
		return c.SetQuantity(chi.URLParam(r, "id"), req.Quantity)
	})
}

func (a *API) removeFromCart(w http.ResponseWriter, r *http.Request) {
	a.mutateCart(w, r, func(c *cart.Cart) []notice.Notice {
		return []notice.Notice{c.Remove(chi.URLParam(r, "id"))}
	})
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	a.mutateCart(w, r, func(c *cart.Cart) []notice.Notice {
		c.Clear()
		return nil
	})
}

func (a *API) mutateCart(w http.ResponseWriter, r *http.Request, fn func(*cart.Cart) []notice.Notice) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	c, err := a.Carts.Load(ctx, id.UID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ns := fn(&c)
	if err := a.Carts.Save(ctx, id.UID, c); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, a.cartReply(c), ns...)
}

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	id := auth.FromContext(r.Context())
	rc, err := a.Orders.Checkout(ctx, id, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusCreated
	if rc.Replayed {
		code = http.StatusOK
	}
	ns := []notice.Notice{notice.Ok("Order placed successfully!")}
	if rc.Repriced {
		ns = append(ns, notice.Warn("Some prices changed since you added them to your cart"))
	}
	ok(w, code, map[string]any{
		"order":        rc.Order,
		"confirmation": a.Presenter.OrderConfirmation(rc.Order),
		"replayed":     rc.Replayed,
		"repriced":     rc.Repriced,
	}, ns...)
}
