package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/oilcall_backend/config"
)

const (
	defaultLimitMax        = 20
	defaultLimitExpiration = 30 * time.Second
)

func limiterConfig(cfg config.RateLimitConfig) limiter.Config {
	lc := limiter.Config{
		Max:               cfg.Max,
		Expiration:        time.Duration(cfg.ExpirationSeconds) * time.Second,
		LimiterMiddleware: limiter.SlidingWindow{},
	}
	if lc.Max <= 0 {
		lc.Max = defaultLimitMax
	}
	if lc.Expiration <= 0 {
		lc.Expiration = defaultLimitExpiration
	}
	return lc
}

// NewLimiterWithRedis shares the sliding window across instances through
// Redis. A nil client keeps counters in process memory.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	lc := limiterConfig(cfg)
	if rdb != nil {
		lc.Storage = fiberredis.NewFromConnection(rdb)
	}
	return limiter.New(lc)
}
