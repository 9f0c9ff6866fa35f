package redisx

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// A generation counter guards a cache-aside key. Readers note the generation
// before loading from the database and write back only if it is unchanged;
// writers Bump after committing. A fill that raced a write is then dropped
// instead of caching pre-write data.

var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Generation reads genKey; a missing counter is 0.
func Generation(ctx context.Context, rdb redis.Cmdable, genKey string) (int64, error) {
	n, err := rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Bump advances genKey and drops key in one transaction.
func Bump(ctx context.Context, rdb redis.Cmdable, genKey, key string) error {
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, key)
		return nil
	})
	return err
}

// SetIfGeneration writes key only while genKey still holds gen and reports
// whether it did.
func SetIfGeneration(ctx context.Context, rdb redis.Cmdable, genKey string, gen int64, key string, value any, ttl time.Duration) (bool, error) {
	n, err := setIfGeneration.Run(ctx, rdb, []string{genKey, key},
		strconv.FormatInt(gen, 10), value, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
