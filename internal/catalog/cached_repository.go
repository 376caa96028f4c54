package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// cachedRepository is a cache-aside wrapper over the Mongo catalog.
// Product detail lookups go through Redis with singleflight collapsing
// concurrent misses for the same product; writes invalidate the cached
// entry and fall through.
type cachedRepository struct {
	next    ProductRepository
	rdb     *redis.Client
	sfg     singleflight.Group
	log     *logrus.Logger
	baseTTL time.Duration
}

func NewCachedRepository(next ProductRepository, rdb *redis.Client, log *logrus.Logger) ProductRepository {
	return &cachedRepository{
		next:    next,
		rdb:     rdb,
		log:     log,
		baseTTL: 15 * time.Minute,
	}
}

func (c *cachedRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := c.sfg.Do(id, func() (interface{}, error) {
		data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
		if err == nil {
			var product domain.Product
			if err := json.Unmarshal(data, &product); err == nil {
				return &product, nil
			}
			// Unparsable cache entry, fall through to the repository.
		} else if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("product cache get failed")
		}

		product, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := c.set(context.Background(), product); err != nil {
				c.log.WithError(err).Warn("product cache set failed")
			}
		}()

		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// List is served straight from Mongo. The storefront lists a few dozen
// products at most; caching the detail lookups is where the hot path is.
func (c *cachedRepository) List(ctx context.Context, category string) ([]domain.Product, error) {
	return c.next.List(ctx, category)
}

func (c *cachedRepository) Create(ctx context.Context, product *domain.Product) error {
	return c.next.Create(ctx, product)
}

func (c *cachedRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := c.next.Update(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, product.ID)
	return nil
}

func (c *cachedRepository) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *cachedRepository) set(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := c.rdb.Set(ctx, productKey(product.ID), data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *cachedRepository) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.WithError(err).Warn("product cache invalidate failed")
	}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
