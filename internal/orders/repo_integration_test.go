package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/postgres/pgtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoAgainstPostgres(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	products := &catalog.Repo{DB: db}
	repo := &Repo{DB: db}

	p, err := products.Create(ctx, catalog.ProductValues{
		Name: "Arduino Uno", Category: "Boards", Price: decimal.RequireFromString("120.50"), Stock: 3,
	}, media.Image{})
	require.NoError(t, err)

	t.Run("concurrent checkouts never oversell", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			placed  int
			refused int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Place(ctx, fmt.Sprintf("u%d", i), "", []Line{{ProductID: p.ID, Quantity: 1}}, cart.DefaultRules)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					placed++
				case errors.Is(err, ErrInsufficientStock):
					refused++
				default:
					t.Errorf("place: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 3, placed)
		assert.Equal(t, 7, refused)
		stocks, err := products.Stocks(ctx, []string{p.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, stocks[p.ID])
	})

	t.Run("shortage rolls back every line", func(t *testing.T) {
		other, err := products.Create(ctx, catalog.ProductValues{
			Name: "Servo", Category: "Motors", Price: decimal.NewFromInt(90), Stock: 5,
		}, media.Image{})
		require.NoError(t, err)

		_, err = repo.Place(ctx, "u1", "", []Line{
			{ProductID: other.ID, Quantity: 2},
			{ProductID: p.ID, Quantity: 1},
		}, cart.DefaultRules)
		var serr *StockError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, []Shortage{{ProductID: p.ID, Required: 1, Available: 0}}, serr.Shortages)

		stocks, err := products.Stocks(ctx, []string{other.ID})
		require.NoError(t, err)
		assert.Equal(t, 5, stocks[other.ID])
	})

	t.Run("cancel restocks", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		o := list[0]
		assert.Equal(t, "120.5", o.Subtotal.String())
		assert.Equal(t, "50", o.Shipping.String())
		assert.Equal(t, "Arduino Uno", o.Items[0].Name)

		_, _, _, err = repo.UpdateStatus(ctx, o.ID, StatusDelivered)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		got, from, restocked, err := repo.UpdateStatus(ctx, o.ID, StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, from)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.Equal(t, map[string]int{p.ID: 1}, restocked)

		_, _, _, err = repo.UpdateStatus(ctx, "missing", StatusConfirmed)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
