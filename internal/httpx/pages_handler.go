package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

func (a *API) page(ctx context.Context, title string, id *auth.Identity, cartCount int) view.Page {
	p := view.Page{Title: title, Menu: view.GuestMenu()}
	if id != nil {
		p.Menu = a.userMenu(ctx, id, cartCount)
	}
	return p
}

func (a *API) cartCount(ctx context.Context, id *auth.Identity) int {
	if id == nil {
		return 0
	}
	c, err := a.Carts.Load(ctx, id.UID)
	if err != nil {
		log.Printf("pages: load cart: %v", err)
		return 0
	}
	return c.Count()
}

func (a *API) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.Pages.Render(w, page, data); err != nil {
		log.Printf("render %s: %v", page, err)
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
	}
}

func (a *API) homePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	ps, err := a.Catalog.List(ctx)
	if err != nil {
		log.Printf("home: %v", err)
		http.Error(w, "Failed to load products", http.StatusInternalServerError)
		return
	}
	f := filterFrom(r)
	id := auth.FromContext(r.Context())
	a.render(w, r, "home", view.HomePage{
		Page:       a.page(ctx, "Shop", id, a.cartCount(ctx, id)),
		Featured:   a.Presenter.ProductCards(catalog.Featured(ps, featuredCount)),
		Products:   a.Presenter.ProductCards(f.Apply(ps)),
		Categories: catalog.Categories(ps),
		Category:   f.Category,
		Query:      f.Query,
	})
}

func (a *API) productPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	p, err := a.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("product page: %v", err)
		http.Error(w, "Failed to load product", http.StatusInternalServerError)
		return
	}
	id := auth.FromContext(r.Context())
	a.render(w, r, "product", view.ProductPage{
		Page:    a.page(ctx, p.Name, id, a.cartCount(ctx, id)),
		Product: a.Presenter.ProductDetail(p),
	})
}
