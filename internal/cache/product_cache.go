package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"producthub/internal/domain"
)

// DefaultTTL bounds how long a stale entry can survive a missed
// invalidation.
const DefaultTTL = time.Hour

// Loader fetches a product from the durable store on a cache miss. A nil
// product without error means the product does not exist.
type Loader func(ctx context.Context, id uint64) (*domain.Product, error)

// ProductCache is a read-through cache keyed by product id with
// write-through invalidation: every product save must call Invalidate so
// the next read is consistent. It is never authoritative for stock during
// checkout, which goes straight to the database.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a cache backed by rdb. A nil client degrades to pass-through:
// every read hits the loader.
func New(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func cacheKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

// GetOrLoad returns the cached product or fills the cache from the loader.
// Cache failures are logged and fall back to the loader rather than failing
// the request.
func (c *ProductCache) GetOrLoad(ctx context.Context, id uint64, load Loader) (*domain.Product, error) {
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, cacheKey(id)).Result()
		if err == nil {
			var p domain.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		} else if err != redis.Nil {
			log.WithError(err).WithField("productId", id).Warn("product cache read failed")
		}
	}

	p, err := load(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil && p != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := c.rdb.Set(ctx, cacheKey(id), data, c.ttl).Err(); err != nil {
				log.WithError(err).WithField("productId", id).Warn("product cache write failed")
			}
		}
	}

	return p, nil
}

// Invalidate removes the product's entry. Called synchronously after every
// product save.
func (c *ProductCache) Invalidate(ctx context.Context, id uint64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, cacheKey(id)).Err()
}

// Warmup pre-populates entries for the given ids in parallel.
func (c *ProductCache) Warmup(ctx context.Context, ids []uint64, load Loader) error {
	if c.rdb == nil {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := c.GetOrLoad(ctx, id, load)
			return err
		})
	}
	return g.Wait()
}
