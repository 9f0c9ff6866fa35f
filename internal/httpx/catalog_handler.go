package httpx

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

const featuredCount = 8

type productList struct {
	Products []catalog.Product  `json:"products"`
	Cards    []view.ProductCard `json:"cards"`
	Count    int                `json:"count"`
	Filter   *catalog.Filter    `json:"filter,omitempty"`
}

func filterFrom(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	return catalog.Filter{Category: q.Get("category"), Query: q.Get("q")}
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	ps, err := a.Catalog.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := productList{}
	if f := filterFrom(r); !f.IsZero() {
		ps = f.Apply(ps)
		out.Filter = &f
	}
	out.Products, out.Cards, out.Count = ps, a.Presenter.ProductCards(ps), len(ps)
	ok(w, http.StatusOK, out)
}

func (a *API) featuredProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	ps, err := a.Catalog.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ps = catalog.Featured(ps, featuredCount)
	ok(w, http.StatusOK, productList{Products: ps, Cards: a.Presenter.ProductCards(ps), Count: len(ps)})
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	p, err := a.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"product": p, "detail": a.Presenter.ProductDetail(p)})
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	ps, err := a.Catalog.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cats := catalog.Categories(ps)
	if cats == nil {
		cats = []catalog.CategoryCount{}
	}
	ok(w, http.StatusOK, map[string]any{"categories": cats})
}

// ProductsSnapshot is the payload of the products stream.
func ProductsSnapshot(ctx context.Context, c Catalog, pr view.Presenter) (any, error) {
	ps, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return productList{Products: ps, Cards: pr.ProductCards(ps), Count: len(ps)}, nil
}
