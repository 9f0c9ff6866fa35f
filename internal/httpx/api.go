package httpx

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/enquiries"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/users"
	"github.com/ariefcatur/go-storefront/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/schema"
)

const (
	readTimeout  = 3 * time.Second
	writeTimeout = 5 * time.Second
)

type Catalog interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	Save(ctx context.Context, id string, in catalog.ProductInput, up *catalog.Upload) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context, threshold int) ([]catalog.Product, error)
}

type Orders interface {
	Checkout(ctx context.Context, id *auth.Identity, key string) (orders.Receipt, error)
	Get(ctx context.Context, id string) (orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
	SetStatus(ctx context.Context, id string, to orders.Status) (orders.Order, error)
}

type Enquiries interface {
	List(ctx context.Context) ([]enquiries.Enquiry, error)
}

type Users interface {
	Ensure(ctx context.Context, id auth.Identity) (users.Profile, error)
	Get(ctx context.Context, uid string) (users.Profile, error)
}

type Roles interface {
	Role(ctx context.Context, uid string) (string, error)
	IsAdmin(ctx context.Context, uid string) (bool, error)
	Grant(ctx context.Context, uid, role string) error
	Revoke(ctx context.Context, uid, role string) error
}

// API wires the storefront's HTTP surface to its services.
type API struct {
	Catalog   Catalog
	Carts     orders.CartStore
	Orders    Orders
	Enquiries Enquiries
	Users     Users
	Roles     Roles
	Verifier  *auth.Verifier
	Presenter view.Presenter
	Pages     *view.Renderer
	Rules     cart.Rules
	LowStock  int

	// Optional websocket streams.
	ProductsHub http.Handler
	OrdersHub   http.Handler

	forms *schema.Decoder
}

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(catalog.Flex(""), func(s string) reflect.Value {
		return reflect.ValueOf(catalog.Flex(s))
	})
	return d
}

func (a *API) Register(r chi.Router) {
	a.forms = newFormDecoder()
	r.Use(auth.Authenticate(a.Verifier))

	if a.ProductsHub != nil {
		r.Get("/ws/products", a.ProductsHub.ServeHTTP)
	}
	if a.OrdersHub != nil {
		r.With(auth.RequireAdmin(a.Roles, writeError)).Get("/admin/ws/orders", a.OrdersHub.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))

		r.Get("/products", a.listProducts)
		r.Get("/products/featured", a.featuredProducts)
		r.Get("/products/{id}", a.getProduct)
		r.Get("/categories", a.listCategories)
		r.Get("/menu", a.menu)
		r.Post("/auth/errors", a.authError)
		r.Delete("/auth/session", a.endSession)

		if a.Pages != nil {
			r.Get("/", a.homePage)
			r.Get("/product/{id}", a.productPage)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(writeError))
			r.Post("/auth/session", a.startSession)
			r.Get("/me", a.me)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(auth.RequireUser(denyWith("Please login to use cart")))
			r.Get("/", a.getCart)
			r.Post("/items", a.addToCart)
			r.Put("/items/{id}", a.setCartQuantity)
			r.Delete("/items/{id}", a.removeFromCart)
			r.Delete("/", a.clearCart)
		})

		r.With(auth.RequireUser(denyWith("Please login to checkout"))).Post("/checkout", a.checkout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(a.Roles, writeError))
			r.Get("/stats", a.adminStats)
			r.Post("/products", a.createProduct)
			r.Get("/products/{id}", a.editProduct)
			r.Put("/products/{id}", a.updateProduct)
			r.Delete("/products/{id}", a.deleteProduct)
			r.Get("/orders", a.adminOrders)
			r.Get("/orders/export.xlsx", a.exportOrders)
			r.Patch("/orders/{id}/status", a.setOrderStatus)
			r.Get("/enquiries", a.adminEnquiries)
			r.Post("/users/{uid}/roles/{role}", a.grantRole)
			r.Delete("/users/{uid}/roles/{role}", a.revokeRole)
		})
	})
}
