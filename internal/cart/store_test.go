package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Store{Redis: rdb, TTL: time.Hour}, mr
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	in := Cart{Items: []Item{
		{ID: "p2", Name: "Servo", Price: decimal.RequireFromString("249.50"), Quantity: 1, Stock: 9},
		{ID: "p1", Name: "Uno", Price: decimal.NewFromInt(650), Quantity: 3, Stock: 4},
	}}
	require.NoError(t, s.Save(ctx, "u1", in))
	assert.Equal(t, time.Hour, mr.TTL("cart:u1"))

	out, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	for i := range in.Items {
		assert.Equal(t, in.Items[i].ID, out.Items[i].ID)
		assert.Equal(t, in.Items[i].Quantity, out.Items[i].Quantity)
		assert.True(t, in.Items[i].Price.Equal(out.Items[i].Price))
	}
}

func TestStoreMissingAndEmpty(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	c, err := s.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.NoError(t, s.Save(ctx, "u1", Cart{Items: []Item{{ID: "a", Quantity: 1}}}))
	require.NoError(t, s.Save(ctx, "u1", Cart{}))
	assert.False(t, mr.Exists("cart:u1"))
}
