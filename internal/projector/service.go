// Package projector keeps the Redis catalog snapshot in step with catalog
// change events.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Lister is the source of truth; *catalog.Repo implements it.
type Lister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type Service struct {
	Products Lister
	Redis    redis.Cmdable
	// LowStock is the level at or below which a stock change is logged.
	LowStock    int
	ServiceName string
}

func (s *Service) dedupKey(eventID string) string {
	return fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
}

// HandleProductChanged is installed as the consumer handler.
func (s *Service) HandleProductChanged(ctx context.Context, m kafkago.Message) error {
	if !kafkax.IsEvent(m, events.EventProductChanged) {
		return nil
	}
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventProductChanged {
		return nil
	}

	dkey := s.dedupKey(env.EventID)
	seen, err := redisx.SeenBefore(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.ProductChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.Change != events.ChangeDeleted && p.Stock <= s.LowStock {
		log.Printf("projector: low stock product=%s stock=%d trace=%s", p.ProductID, p.Stock, env.TraceID)
	}

	if err := s.Rebuild(ctx); err != nil {
		// let a redelivery try again
		_ = s.Redis.Del(ctx, dkey).Err()
		return err
	}
	return nil
}

// Rebuild replaces the snapshot with the current collection. A write that
// lands while the collection is read wins; its own event rebuilds again.
func (s *Service) Rebuild(ctx context.Context) error {
	snap := &catalog.Snapshot{Redis: s.Redis}
	gen, err := snap.Generation(ctx)
	if err != nil {
		return fmt.Errorf("snapshot generation: %w", err)
	}
	ps, err := s.Products.List(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	stored, err := snap.Put(ctx, gen, ps)
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	if !stored {
		log.Printf("projector: snapshot superseded during rebuild")
	}
	return nil
}

// Warm builds the snapshot when none is cached yet.
func (s *Service) Warm(ctx context.Context) error {
	exists, err := redisx.Exists(ctx, s.Redis, redisx.KeyCatalogSnapshot)
	if err != nil || exists {
		return err
	}
	return s.Rebuild(ctx)
}
