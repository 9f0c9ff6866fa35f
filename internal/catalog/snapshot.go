package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Snapshot caches the whole collection in Redis as served by Service.List.
type Snapshot struct {
	Redis redis.Cmdable
}

// Get reports ok=false on a cache miss.
func (s *Snapshot) Get(ctx context.Context) ([]Product, bool, error) {
	if s == nil || s.Redis == nil {
		return nil, false, nil
	}
	b, err := s.Redis.Get(ctx, redisx.KeyCatalogSnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ps []Product
	if err := json.Unmarshal(b, &ps); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return ps, true, nil
}

// Generation is read before loading the collection from the store and handed
// back to Put.
func (s *Snapshot) Generation(ctx context.Context) (int64, error) {
	if s == nil || s.Redis == nil {
		return 0, nil
	}
	return redisx.Generation(ctx, s.Redis, redisx.KeyCatalogGen)
}

// Put stores ps unless a write invalidated the snapshot since gen was read.
func (s *Snapshot) Put(ctx context.Context, gen int64, ps []Product) (bool, error) {
	if s == nil || s.Redis == nil {
		return false, nil
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return false, err
	}
	return redisx.SetIfGeneration(ctx, s.Redis, redisx.KeyCatalogGen, gen, redisx.KeyCatalogSnapshot, b, redisx.TTLSnapshot)
}

// Invalidate drops the snapshot and refuses fills that started before it.
func (s *Snapshot) Invalidate(ctx context.Context) error {
	if s == nil || s.Redis == nil {
		return nil
	}
	return redisx.Bump(ctx, s.Redis, redisx.KeyCatalogGen, redisx.KeyCatalogSnapshot)
}
