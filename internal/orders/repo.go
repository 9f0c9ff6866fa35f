package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, uid, user_email, items, subtotal, shipping, total, status, created_at, updated_at`

type Repo struct{ DB *pgxpool.Pool }

// Placement is a committed order and the stock each touched product has left.
type Placement struct {
	Order     Order
	Remaining map[string]int
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o     Order
		items []byte
		st    string
	)
	if err := row.Scan(&o.ID, &o.UID, &o.UserEmail, &items, &o.Subtotal, &o.Shipping, &o.Total,
		&st, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	o.Status = Status(st)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("decode order items: %w", err)
	}
	return o, nil
}

// Place decrements stock for every line and writes the order in one
// transaction. Each decrement only succeeds while stock >= quantity, so
// concurrent checkouts can never oversell. If any line falls short nothing is
// committed and a *StockError names every short line.
func (r *Repo) Place(ctx context.Context, uid, email string, lines []Line, rules cart.Rules) (Placement, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Placement{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		items     = make([]Item, 0, len(lines))
		remaining = make(map[string]int, len(lines))
		short     []Shortage
		subtotal  = decimal.Zero
		count     int
	)
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return Placement{}, fmt.Errorf("invalid quantity for product %s", ln.ProductID)
		}
		var (
			it    = Item{ProductID: ln.ProductID, Quantity: ln.Quantity}
			stock int
		)
		err := tx.QueryRow(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
			RETURNING name, price, stock`, ln.ProductID, ln.Quantity).Scan(&it.Name, &it.Price, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			var have int
			if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, ln.ProductID).Scan(&have); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return Placement{}, err
			}
			short = append(short, Shortage{ProductID: ln.ProductID, Required: ln.Quantity, Available: have})
			continue
		}
		if err != nil {
			return Placement{}, fmt.Errorf("decrement stock: %w", err)
		}
		items = append(items, it)
		remaining[ln.ProductID] = stock
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	if len(short) > 0 {
		return Placement{}, &StockError{Shortages: short} // rollback via defer
	}

	totals := cart.Price(subtotal, count, rules)
	now := time.Now().UTC()
	o := Order{
		ID:        uuid.NewString(),
		UID:       uid,
		UserEmail: email,
		Items:     items,
		Subtotal:  totals.Subtotal,
		Shipping:  totals.Shipping,
		Total:     totals.Total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	raw, err := json.Marshal(o.Items)
	if err != nil {
		return Placement{}, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		o.ID, o.UID, o.UserEmail, raw, o.Subtotal, o.Shipping, o.Total, string(o.Status), now); err != nil {
		return Placement{}, fmt.Errorf("insert order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Placement{}, err
	}
	return Placement{Order: o, Remaining: remaining}, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns every order, newest first.
func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order along the status flow. Cancelling puts the
// items back into stock in the same transaction; products deleted since the
// purchase are skipped. The returned map holds the new stock per restocked
// product.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status) (Order, Status, map[string]int, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, "", nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, "", nil, ErrNotFound
	}
	if err != nil {
		return Order{}, "", nil, err
	}
	from := o.Status
	if !CanTransition(from, to) {
		return Order{}, "", nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	restocked := map[string]int{}
	if Restocks(to) {
		for _, it := range o.Items {
			var stock int
			err := tx.QueryRow(ctx, `
				UPDATE products SET stock = stock + $2, updated_at = NOW()
				WHERE id = $1 RETURNING stock`, it.ProductID, it.Quantity).Scan(&stock)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return Order{}, "", nil, fmt.Errorf("restock: %w", err)
			}
			restocked[it.ProductID] = stock
		}
	}

	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, id, string(to), o.UpdatedAt); err != nil {
		return Order{}, "", nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, "", nil, err
	}
	return o, from, restocked, nil
}
