package httpx

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/notice"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/report"
	"github.com/ariefcatur/go-storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

const maxUpload = 10 << 20

// productForm reads a product from JSON or from a multipart/urlencoded form
// with an optional "image" file.
func (a *API) productForm(w http.ResponseWriter, r *http.Request) (catalog.ProductInput, *catalog.Upload, error) {
	var in catalog.ProductInput
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		if ct == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxUpload); err != nil {
				return in, nil, errBadRequest
			}
		} else if err := r.ParseForm(); err != nil {
			return in, nil, errBadRequest
		}
		if v := r.PostForm.Get("version"); strings.TrimSpace(v) == "" {
			r.PostForm.Del("version")
		}
		if err := a.forms.Decode(&in, r.PostForm); err != nil {
			return in, nil, &catalog.ValidationError{Fields: []string{"form"}}
		}
		f, hdr, err := r.FormFile("image")
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return in, nil, nil
		}
		if err != nil {
			return in, nil, errBadRequest
		}
		return in, &catalog.Upload{Name: hdr.Filename, Body: f}, nil
	default:
		if err := decodeJSON(w, r, &in); err != nil {
			return in, nil, err
		}
		return in, nil, nil
	}
}

func (a *API) saveProduct(w http.ResponseWriter, r *http.Request, id string) {
	in, up, err := a.productForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if up != nil {
		if c, isCloser := up.Body.(io.Closer); isCloser {
			defer c.Close()
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*writeTimeout)
	defer cancel()

	p, err := a.Catalog.Save(ctx, id, in, up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if id == "" {
		ok(w, http.StatusCreated, p, notice.Ok("Product added!"))
		return
	}
	ok(w, http.StatusOK, p, notice.Ok("Product updated!"))
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	a.saveProduct(w, r, "")
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	a.saveProduct(w, r, chi.URLParam(r, "id"))
}

// editProduct returns the edit form state for one product.
func (a *API) editProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	p, err := a.Catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	form := catalog.ProductInput{
		Name:        p.Name,
		Category:    p.Category,
		Price:       catalog.Flex(p.Price.String()),
		Stock:       catalog.Flex(strconv.Itoa(p.Stock)),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Version:     p.Version,
	}
	ok(w, http.StatusOK, map[string]any{"id": p.ID, "form": form, "product": p})
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*writeTimeout)
	defer cancel()

	if err := a.Catalog.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, nil, notice.Ok("Product deleted"))
}

type orderList struct {
	Orders []orders.Order  `json:"orders"`
	Rows   []view.OrderRow `json:"rows"`
	Count  int             `json:"count"`
}

// OrdersSnapshot is the payload of the admin orders stream.
func OrdersSnapshot(ctx context.Context, o Orders, pr view.Presenter) (any, error) {
	os, err := o.List(ctx)
	if err != nil {
		return nil, err
	}
	return orderList{Orders: os, Rows: pr.OrderRows(os), Count: len(os)}, nil
}

func (a *API) adminOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	data, err := OrdersSnapshot(ctx, a.Orders, a.Presenter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, data)
}

func (a *API) exportOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*readTimeout)
	defer cancel()

	os, err := a.Orders.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", "attachment; filename=orders.xlsx")
	if err := report.Orders(w, os); err != nil {
		log.Printf("export orders: %v", err)
	}
}

type statusReq struct {
	Status string `json:"status"`
}

func (a *API) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	to, valid := orders.ParseStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !valid {
		writeJSON(w, http.StatusBadRequest, Response{Notices: []notice.Notice{notice.Fail("Unknown order status")}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	o, err := a.Orders.SetStatus(ctx, chi.URLParam(r, "id"), to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"order": o, "row": a.Presenter.OrderRow(o)},
		notice.Ok("Order "+view.ShortRef(o.ID)+" is now "+string(o.Status)))
}

func (a *API) adminEnquiries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	es, err := a.Enquiries.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]any{"enquiries": es, "cards": a.Presenter.EnquiryCards(es), "count": len(es)})
}

type stats struct {
	Products  int               `json:"products"`
	Orders    int               `json:"orders"`
	Enquiries int               `json:"enquiries"`
	LowStock  []catalog.Product `json:"low_stock"`
}

func (a *API) adminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*readTimeout)
	defer cancel()

	ps, err := a.Catalog.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	os, err := a.Orders.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	es, err := a.Enquiries.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	low, err := a.Catalog.LowStock(ctx, a.LowStock)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if low == nil {
		low = []catalog.Product{}
	}
	ok(w, http.StatusOK, stats{Products: len(ps), Orders: len(os), Enquiries: len(es), LowStock: low})
}

func (a *API) grantRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	uid, role := chi.URLParam(r, "uid"), chi.URLParam(r, "role")
	if err := a.Roles.Grant(ctx, uid, role); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]string{"uid": uid, "role": role}, notice.Ok("Role granted"))
}

func (a *API) revokeRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	uid, role := chi.URLParam(r, "uid"), chi.URLParam(r, "role")
	if err := a.Roles.Revoke(ctx, uid, role); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]string{"uid": uid, "role": role}, notice.Ok("Role revoked"))
}
