package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/redis/go-redis/v9"
)

var _ domain.LimitRepository = (*RedisLimitRepository)(nil)

const limitKeyPrefix = "shareit:booking_limit"

var errNilClient = errors.New("redis client is nil")

// releaseScript decrements a live counter only, so an expired window is not recreated without a TTL.
var releaseScript = redis.NewScript(`
local count = redis.call("GET", KEYS[1])
if count and tonumber(count) > 0 then
  return redis.call("DECR", KEYS[1])
end
return 0
`)

// RedisLimitRepository shares fixed-window counters between API replicas.
type RedisLimitRepository struct {
	client *redis.Client
}

// NewRedisClient builds a client from configuration. It does not dial.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisLimitRepository(client *redis.Client) *RedisLimitRepository {
	return &RedisLimitRepository{client: client}
}

func (r *RedisLimitRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}
	key := fmt.Sprintf("%s:%d", limitKeyPrefix, userID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

func (r *RedisLimitRepository) ReleaseRateLimit(ctx context.Context, userID int64) error {
	if r.client == nil {
		return errNilClient
	}
	key := fmt.Sprintf("%s:%d", limitKeyPrefix, userID)
	if err := releaseScript.Run(ctx, r.client, []string{key}).Err(); err != nil {
		return fmt.Errorf("failed to release rate limit: %w", err)
	}
	return nil
}

// Ping checks the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return errNilClient
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
