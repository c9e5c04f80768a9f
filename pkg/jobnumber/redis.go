package jobnumber

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCounter uses INCR on a single key, which Redis applies atomically.
type RedisCounter struct {
	rdb *redis.Client
	key string
}

// NewRedisCounter seeds key so the first number handed out is start. A key
// that already exists is left alone: the counter never moves backwards.
func NewRedisCounter(ctx context.Context, rdb *redis.Client, key string, start int64) (*RedisCounter, error) {
	if start < 1 {
		start = 1
	}
	if err := rdb.SetNX(ctx, key, start-1, 0).Err(); err != nil {
		return nil, fmt.Errorf("seed %s: %w", key, err)
	}
	return &RedisCounter{rdb: rdb, key: key}, nil
}

func (c *RedisCounter) Next(ctx context.Context) (int64, error) {
	n, err := c.rdb.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", c.key, err)
	}
	if n <= 0 {
		return 0, ErrExhausted
	}
	return n, nil
}
