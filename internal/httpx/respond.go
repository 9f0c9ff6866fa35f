package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/notice"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/go-chi/chi/v5/middleware"
)

// Response is the body of every JSON reply.
type Response struct {
	Notices  []notice.Notice `json:"notices,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	Data     any             `json:"data,omitempty"`
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, code int, data any, ns ...notice.Notice) {
	writeJSON(w, code, Response{Notices: ns, Data: data})
}

// failure is how an error reaches the client.
type failure struct {
	status   int
	notice   notice.Notice
	redirect string
	data     any
}

func classify(err error) failure {
	var (
		aerr *auth.Error
		verr *catalog.ValidationError
		serr *orders.StockError
	)
	switch {
	case errors.As(err, &aerr):
		return failure{http.StatusUnauthorized, notice.Fail(auth.Message(auth.FlowSession, aerr.Code)), "/login", nil}
	case errors.Is(err, auth.ErrUnauthenticated):
		return failure{http.StatusUnauthorized, notice.Warn("Please login to continue"), "/login", nil}
	case errors.Is(err, auth.ErrForbidden):
		return failure{http.StatusForbidden, notice.Fail("Access denied. Admin only."), "/", nil}
	case errors.As(err, &verr):
		return failure{http.StatusBadRequest, notice.Fail("Please fill all required fields"), "", map[string]any{"fields": verr.Fields}}
	case errors.Is(err, catalog.ErrNotFound):
		return failure{http.StatusNotFound, notice.Fail("Product not found"), "", nil}
	case errors.Is(err, catalog.ErrVersionConflict):
		return failure{http.StatusConflict, notice.Warn("This product was changed by someone else. Reload and try again."), "", nil}
	case errors.Is(err, cart.ErrEmpty):
		return failure{http.StatusBadRequest, notice.Warn("Your cart is empty"), "", nil}
	case errors.Is(err, cart.ErrOutOfStock):
		return failure{http.StatusConflict, notice.Warn("Product is out of stock"), "", nil}
	case errors.Is(err, cart.ErrInvalidQuantity):
		return failure{http.StatusBadRequest, notice.Fail("Quantity must be at least 1"), "", nil}
	case errors.As(err, &serr):
		return failure{http.StatusConflict, notice.Warn("Some items are no longer available in that quantity. Your cart has been updated."), "", map[string]any{"shortages": serr.Shortages}}
	case errors.Is(err, orders.ErrCheckoutInProgress):
		return failure{http.StatusConflict, notice.Warn("Your order is already being placed. Please wait."), "", nil}
	case errors.Is(err, orders.ErrNotFound):
		return failure{http.StatusNotFound, notice.Fail("Order not found"), "", nil}
	case errors.Is(err, orders.ErrInvalidTransition):
		return failure{http.StatusConflict, notice.Fail("That status change is not allowed"), "", nil}
	case errors.Is(err, users.ErrNotFound):
		return failure{http.StatusNotFound, notice.Fail("User not found"), "", nil}
	case errors.Is(err, users.ErrUnknownRole):
		return failure{http.StatusBadRequest, notice.Fail("Unknown role"), "", nil}
	case errors.Is(err, media.ErrDisabled):
		return failure{http.StatusServiceUnavailable, notice.Fail("Image upload is not available"), "", nil}
	case errors.Is(err, errBadRequest):
		return failure{http.StatusBadRequest, notice.Fail("Invalid request"), "", nil}
	}
	return failure{http.StatusInternalServerError, notice.Generic, "", nil}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
	}
	writeJSON(w, f.status, Response{Notices: []notice.Notice{f.notice}, Redirect: f.redirect, Data: f.data})
}

// denyWith answers unauthenticated callers with msg instead of the default
// login prompt. Bad or expired tokens keep their own message.
func denyWith(msg string) auth.Deny {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		var aerr *auth.Error
		if errors.Is(err, auth.ErrUnauthenticated) && !errors.As(err, &aerr) {
			writeJSON(w, http.StatusUnauthorized, Response{Notices: []notice.Notice{notice.Warn(msg)}, Redirect: "/login"})
			return
		}
		writeError(w, r, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
