package users

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/postgres/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoAgainstPostgres(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	repo := &Repo{DB: db}

	err := repo.Grant(ctx, "nobody", RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Ensure(ctx, auth.Identity{UID: "boss", Email: "boss@example.com", Name: "Boss"})
	require.NoError(t, err)
	require.NoError(t, repo.Grant(ctx, "boss", RoleAdmin))
	require.NoError(t, repo.Grant(ctx, "boss", RoleAdmin))

	has, err := repo.Has(ctx, "boss", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, has)

	p, err := repo.Ensure(ctx, auth.Identity{UID: "boss", Email: "boss@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Boss", p.FullName)

	require.NoError(t, repo.Revoke(ctx, "boss", RoleAdmin))
	has, err = repo.Has(ctx, "boss", RoleAdmin)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
