package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, category, price, stock, description, image_url, image_public_id, version, created_at, updated_at`

type Repo struct{ DB *pgxpool.Pool }

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Description,
		&p.ImageURL, &p.ImagePublicID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns the whole collection in creation order.
func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repo) Create(ctx context.Context, v ProductValues, img media.Image) (Product, error) {
	now := time.Now().UTC()
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		INSERT INTO products (id, name, category, price, stock, description, image_url, image_public_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $9)
		RETURNING `+productColumns,
		uuid.NewString(), v.Name, v.Category, v.Price, v.Stock, v.Description, img.URL, img.PublicID, now))
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update overwrites the product. Without a version the last write wins;
// with one, a stale version yields ErrVersionConflict.
func (r *Repo) Update(ctx context.Context, id string, v ProductValues, img media.Image) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products
		SET name=$2, category=$3, price=$4, stock=$5, description=$6,
		    image_url=$7, image_public_id=$8, version=version+1, updated_at=$9
		WHERE id=$1 AND ($10 = 0 OR version=$10)
		RETURNING `+productColumns,
		id, v.Name, v.Category, v.Price, v.Stock, v.Description, img.URL, img.PublicID, time.Now().UTC(), v.Version))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return Product{}, gerr
		}
		return Product{}, ErrVersionConflict
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes the row and returns it so the caller can drop its image.
func (r *Repo) Delete(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

// Stocks returns the live stock of the given products; unknown ids are absent.
func (r *Repo) Stocks(ctx context.Context, ids []string) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, stock FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("product stocks: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int, len(ids))
	for rows.Next() {
		var id string
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, err
		}
		out[id] = stock
	}
	return out, rows.Err()
}

func (r *Repo) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products WHERE stock <= $1 ORDER BY stock, name`, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
