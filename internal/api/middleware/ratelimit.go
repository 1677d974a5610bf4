package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "flowcatalog_ratelimit"

// NewRateLimiter creates a Gin middleware that limits each client IP to
// requests per period, counted in process memory.
func NewRateLimiter(requests int64, period time.Duration) (gin.HandlerFunc, error) {
	return newRateLimiter(requests, period, memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}))
}

// NewRedisRateLimiter is NewRateLimiter with counters kept in redis, so
// replicas behind a load balancer share one budget per client.
func NewRedisRateLimiter(ctx context.Context, redisURL string, requests int64, period time.Duration) (gin.HandlerFunc, *redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse rate limit redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping rate limit redis: %w", err)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: rateLimitPrefix,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("create redis limiter store: %w", err)
	}

	mw, err := newRateLimiter(requests, period, store)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return mw, client, nil
}

func newRateLimiter(requests int64, period time.Duration, store limiter.Store) (gin.HandlerFunc, error) {
	if requests <= 0 {
		return nil, fmt.Errorf("invalid rate limit %d: must be positive", requests)
	}
	if period <= 0 {
		return nil, fmt.Errorf("invalid rate limit period %v: must be positive", period)
	}

	rate := limiter.Rate{
		Period: period,
		Limit:  requests,
	}

	return mgin.NewMiddleware(limiter.New(store, rate)), nil
}
