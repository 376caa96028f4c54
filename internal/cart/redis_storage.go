package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStorage mirrors one session's cart as a JSON value under
// cart:<session>. Carts have no expiry; they survive until the shopper
// places an order or empties the cart.
type RedisStorage struct {
	client  *redis.Client
	session string
	log     *logrus.Logger
}

func NewRedisStorage(client *redis.Client, session string, log *logrus.Logger) *RedisStorage {
	return &RedisStorage{
		client:  client,
		session: session,
		log:     log,
	}
}

func (r *RedisStorage) Load(ctx context.Context) (domain.Cart, error) {
	data, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		// Unreadable mirror is recovered as an empty cart, never surfaced.
		r.log.WithFields(logrus.Fields{
			"session": r.session,
			"error":   err,
		}).Warn("stored cart is unparsable, starting empty")
		return domain.Cart{}, nil
	}
	return cart, nil
}

func (r *RedisStorage) Save(ctx context.Context, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, r.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) key() string {
	return fmt.Sprintf("cart:%s", r.session)
}
