package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Store keeps one cart per identity as a JSON array under cart:{uid}.
type Store struct {
	Redis redis.Cmdable
	TTL   time.Duration
}

func key(uid string) string { return fmt.Sprintf(redisx.KeyCart, uid) }

// Load returns an empty cart when nothing is stored.
func (s *Store) Load(ctx context.Context, uid string) (Cart, error) {
	b, err := s.Redis.Get(ctx, key(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return Cart{Items: items}, nil
}

// Save writes the cart and refreshes its TTL; an empty cart deletes the key.
func (s *Store) Save(ctx context.Context, uid string, c Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, uid)
	}
	b, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, key(uid), b, s.TTL).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, uid string) error {
	return s.Redis.Del(ctx, key(uid)).Err()
}
