package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Invalidator drops cached product views after a ledger mutation. The
// console's read paths cache rendered kurti cards keyed by code; any
// reserve/commit/release must invalidate them.
type Invalidator interface {
	InvalidateKurti(ctx context.Context, codes ...string) error
}

func kurtiKey(code string) string { return fmt.Sprintf("kurti:view:%s", code) }

// Redis deletes the cached keys from a shared redis.
type Redis struct{ Client *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) InvalidateKurti(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, c := range codes {
		keys[i] = kurtiKey(c)
	}
	return r.Client.Del(ctx, keys...).Err()
}

// Nop is used when no redis is configured (tests, single-node runs).
type Nop struct{}

func (Nop) InvalidateKurti(context.Context, ...string) error { return nil }
