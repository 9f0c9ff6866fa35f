package projector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lister struct {
	products  []catalog.Product
	calls     int
	err       error
	afterRead func()
}

func (l *lister) List(context.Context) ([]catalog.Product, error) {
	l.calls++
	if l.afterRead != nil {
		l.afterRead()
	}
	return l.products, l.err
}

func setup(t *testing.T) (*Service, *lister, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := &lister{products: []catalog.Product{{ID: "p1", Name: "Arduino Uno", Price: decimal.NewFromInt(100), Stock: 2}}}
	return &Service{Products: l, Redis: rdb, LowStock: 5, ServiceName: "projector"}, l, mr
}

func message(eventID, eventType string) kafkago.Message {
	env := events.Envelope{
		EventID:   eventID,
		EventType: eventType,
		Payload:   kafkax.MustMarshal(events.ProductChangedPayload{ProductID: "p1", Change: events.ChangeStock, Stock: 2}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleRebuildsOncePerEvent(t *testing.T) {
	s, l, mr := setup(t)
	ctx := context.Background()

	require.NoError(t, s.HandleProductChanged(ctx, message("e1", events.EventProductChanged)))
	require.NoError(t, s.HandleProductChanged(ctx, message("e1", events.EventProductChanged)))
	assert.Equal(t, 1, l.calls)

	raw, err := mr.Get(redisx.KeyCatalogSnapshot)
	require.NoError(t, err)
	var got []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.True(t, mr.Exists("dedup:projector:e1"))
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	s, l, mr := setup(t)
	require.NoError(t, s.HandleProductChanged(context.Background(), message("e2", events.EventOrderPlaced)))
	assert.Equal(t, 0, l.calls)
	assert.False(t, mr.Exists(redisx.KeyCatalogSnapshot))
}

func TestHandleFailureAllowsRetry(t *testing.T) {
	s, l, mr := setup(t)
	ctx := context.Background()
	l.err = errors.New("db down")

	assert.Error(t, s.HandleProductChanged(ctx, message("e3", events.EventProductChanged)))
	assert.False(t, mr.Exists("dedup:projector:e3"))

	l.err = nil
	require.NoError(t, s.HandleProductChanged(ctx, message("e3", events.EventProductChanged)))
	assert.Equal(t, 2, l.calls)
}

func TestHandleRejectsGarbage(t *testing.T) {
	s, _, _ := setup(t)
	assert.Error(t, s.HandleProductChanged(context.Background(), kafkago.Message{Value: []byte("{")}))
}

func TestWarmOnlyWhenMissing(t *testing.T) {
	s, l, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, s.Warm(ctx))
	require.NoError(t, s.Warm(ctx))
	assert.Equal(t, 1, l.calls)
}

func TestRebuildSkipsSnapshotOverwrittenByLaterChange(t *testing.T) {
	s, l, mr := setup(t)
	ctx := context.Background()

	// an admin edit commits and invalidates while the rows are being read
	l.afterRead = func() {
		snap := &catalog.Snapshot{Redis: s.Redis}
		require.NoError(t, snap.Invalidate(ctx))
	}
	require.NoError(t, s.Rebuild(ctx))
	assert.False(t, mr.Exists(redisx.KeyCatalogSnapshot))

	l.afterRead = nil
	require.NoError(t, s.Rebuild(ctx))
	assert.True(t, mr.Exists(redisx.KeyCatalogSnapshot))
}
