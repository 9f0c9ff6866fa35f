package catalog

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/postgres/pgtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoAgainstPostgres(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	repo := &Repo{DB: db}

	p, err := repo.Create(ctx, ProductValues{
		Name: "Relay Module", Category: "Modules", Price: decimal.RequireFromString("75.25"), Stock: 2,
	}, media.Image{URL: "https://img/relay.png", PublicID: "relay"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, "75.25", p.Price.String())

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "relay", got.ImagePublicID)

	v := ProductValues{Name: "Relay Module 2ch", Category: "Modules", Price: decimal.NewFromInt(80), Stock: 9, Version: 1}
	upd, err := repo.Update(ctx, p.ID, v, media.Image{URL: got.ImageURL, PublicID: got.ImagePublicID})
	require.NoError(t, err)
	assert.Equal(t, 2, upd.Version)

	_, err = repo.Update(ctx, p.ID, v, media.Image{})
	assert.ErrorIs(t, err, ErrVersionConflict)

	v.Version = 0
	_, err = repo.Update(ctx, "missing", v, media.Image{})
	assert.ErrorIs(t, err, ErrNotFound)

	low, err := repo.LowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 1)

	stocks, err := repo.Stocks(ctx, []string{p.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{p.ID: 9}, stocks)

	gone, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "relay", gone.ImagePublicID)

	_, err = repo.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
