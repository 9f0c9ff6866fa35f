package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Store is the order persistence; *Repo implements it.
type Store interface {
	Place(ctx context.Context, uid, email string, lines []Line, rules cart.Rules) (Placement, error)
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, to Status) (Order, Status, map[string]int, error)
}

type CartStore interface {
	Load(ctx context.Context, uid string) (cart.Cart, error)
	Save(ctx context.Context, uid string, c cart.Cart) error
	Clear(ctx context.Context, uid string) error
}

type StockReader interface {
	Stocks(ctx context.Context, ids []string) (map[string]int, error)
}

// CatalogNotifier is told about every stock level checkout or cancellation changes.
type CatalogNotifier interface {
	Changed(ctx context.Context, productID string, stock int)
}

type Service struct {
	Orders  Store
	Carts   CartStore
	Stocks  StockReader
	Catalog CatalogNotifier
	Redis   redis.Cmdable
	Events  *events.Emitter
	Rules   cart.Rules
}

type Receipt struct {
	Order    Order
	Replayed bool
	// some line was charged a price other than the one shown in the cart
	Repriced bool
}

// ErrCheckoutInProgress is returned when another request still holds the
// same idempotency key.
var ErrCheckoutInProgress = errors.New("checkout already in progress")

const idemPending = "pending"

// How long a retry waits for the first request holding its key.
var (
	idemWait = 3 * time.Second
	idemPoll = 20 * time.Millisecond
)

// Checkout turns the caller's cart into a pending order. A non-empty key makes
// retries return the first order instead of placing another one.
func (s *Service) Checkout(ctx context.Context, id *auth.Identity, key string) (Receipt, error) {
	if id == nil || id.UID == "" {
		return Receipt{}, auth.ErrUnauthenticated
	}

	idemKey := ""
	if key != "" && s.Redis != nil {
		k := fmt.Sprintf(redisx.KeyIdemCheckout, id.UID, key)
		replay, held, err := s.claim(ctx, k)
		if err != nil {
			return Receipt{}, err
		}
		if replay != nil {
			return *replay, nil
		}
		if held {
			idemKey = k
		}
	}
	settled := false
	if idemKey != "" {
		defer func() {
			if !settled {
				s.release(ctx, idemKey)
			}
		}()
	}

	c, err := s.Carts.Load(ctx, id.UID)
	if err != nil {
		return Receipt{}, err
	}
	if c.IsEmpty() {
		return Receipt{}, cart.ErrEmpty
	}

	lines := make([]Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, Line{ProductID: it.ID, Quantity: it.Quantity})
	}

	p, err := s.Orders.Place(ctx, id.UID, id.Email, lines, s.Rules)
	var serr *StockError
	if errors.As(err, &serr) {
		s.refreshCart(ctx, id.UID, c)
		return Receipt{}, err
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("place order: %w", err)
	}

	if idemKey != "" {
		settled = true
		if err := s.Redis.Set(ctx, idemKey, p.Order.ID, redisx.TTLIdempotency).Err(); err != nil {
			log.Printf("checkout: idempotency store: %v", err)
		}
	}
	if err := s.Carts.Clear(ctx, id.UID); err != nil {
		log.Printf("checkout: clear cart %s: %v", id.UID, err)
	}
	for pid, stock := range p.Remaining {
		s.Catalog.Changed(ctx, pid, stock)
	}
	if err := s.Events.Emit(ctx, events.TopicOrderPlaced, events.EventOrderPlaced, p.Order.ID, placedPayload(p.Order)); err != nil {
		log.Printf("checkout: publish order %s: %v", p.Order.ID, err)
	}
	return Receipt{Order: p.Order, Repriced: repriced(c, p.Order)}, nil
}

// claim marks key as taken by this request. When another request already
// holds it, claim waits for that request's order and returns it as a replay.
// A Redis failure degrades to a checkout without idempotency.
func (s *Service) claim(ctx context.Context, key string) (*Receipt, bool, error) {
	deadline := time.Now().Add(idemWait)
	for {
		won, err := s.Redis.SetNX(ctx, key, idemPending, redisx.TTLIdemClaim).Result()
		if err != nil {
			log.Printf("checkout: idempotency claim: %v", err)
			return nil, false, nil
		}
		if won {
			return nil, true, nil
		}

		v, err := s.Redis.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// released between the two calls
			continue
		case err != nil:
			log.Printf("checkout: idempotency lookup: %v", err)
			return nil, false, nil
		case v != idemPending:
			o, err := s.Orders.Get(ctx, v)
			if err != nil {
				return nil, false, err
			}
			return &Receipt{Order: o, Replayed: true}, false, nil
		}

		if time.Now().After(deadline) {
			return nil, false, ErrCheckoutInProgress
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(idemPoll):
		}
	}
}

// release frees a claim whose checkout did not place an order, so a retry
// can try again.
func (s *Service) release(ctx context.Context, key string) {
	if err := s.Redis.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
		log.Printf("checkout: idempotency release: %v", err)
	}
}

func repriced(c cart.Cart, o Order) bool {
	for _, it := range o.Items {
		if ci, found := c.Get(it.ProductID); found && !ci.Price.Equal(it.Price) {
			return true
		}
	}
	return false
}

// refreshCart keeps the cart but replaces its stock snapshots with live values.
func (s *Service) refreshCart(ctx context.Context, uid string, c cart.Cart) {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ID)
	}
	stocks, err := s.Stocks.Stocks(ctx, ids)
	if err != nil {
		log.Printf("checkout: refresh stocks: %v", err)
		return
	}
	c.Refresh(stocks)
	if err := s.Carts.Save(ctx, uid, c); err != nil {
		log.Printf("checkout: save refreshed cart: %v", err)
	}
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.Orders.List(ctx)
}

// SetStatus applies an admin status change and announces it.
func (s *Service) SetStatus(ctx context.Context, id string, to Status) (Order, error) {
	o, from, restocked, err := s.Orders.UpdateStatus(ctx, id, to)
	if err != nil {
		return Order{}, err
	}
	for pid, stock := range restocked {
		s.Catalog.Changed(ctx, pid, stock)
	}
	payload := events.OrderStatusChangedPayload{OrderID: o.ID, From: string(from), To: string(to)}
	if err := s.Events.Emit(ctx, events.TopicOrderStatusChanged, events.EventOrderStatusChanged, o.ID, payload); err != nil {
		log.Printf("orders: publish status %s: %v", o.ID, err)
	}
	return o, nil
}

func placedPayload(o Order) events.OrderPlacedPayload {
	items := make([]events.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price.String()})
	}
	return events.OrderPlacedPayload{OrderID: o.ID, UID: o.UID, Items: items, Total: o.Total.String()}
}
