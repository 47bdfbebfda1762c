package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateKeyPrefix = "placemap_ratelimit"

// NewRateStore returns the counter store behind the per-IP budgets. With an
// empty redisURL counters live in process memory; otherwise every replica
// shares them through Redis. The returned close func releases the client.
func NewRateStore(ctx context.Context, redisURL string) (limiter.Store, func() error, error) {
	if redisURL == "" {
		store := memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateKeyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
		return store, func() error { return nil }, nil
	}

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
		Prefix:   rateKeyPrefix,
		MaxRetry: limiter.DefaultMaxRetry,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("create rate limit store: %w", err)
	}
	return store, client.Close, nil
}

// RateLimit allows perMinute requests per client IP within scope. Scopes
// sharing one store keep separate budgets. Requests over budget are answered
// by onLimit.
//
// The key is r.RemoteAddr as rewritten by TrustedRealIP, so forwarded
// headers only count when they come from a trusted proxy.
func RateLimit(store limiter.Store, scope string, perMinute int, onLimit func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	rate := limiter.Rate{Period: time.Minute, Limit: int64(perMinute)}
	instance := limiter.New(store, rate)

	m := stdlib.NewMiddleware(instance,
		stdlib.WithKeyGetter(func(r *http.Request) string {
			ip := r.RemoteAddr
			if parsed := extractIP(r.RemoteAddr); parsed != nil {
				ip = parsed.String()
			}
			return scope + ":" + ip
		}),
		stdlib.WithLimitReachedHandler(onLimit),
	)
	return m.Handler
}
