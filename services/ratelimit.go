package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimiter throttles rapid-fire interactions (follows, reactions)
// per user and action. A nil client disables limiting entirely, and a
// redis outage fails open so interactions are never blocked by the
// limiter's own infrastructure.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	log    *logrus.Logger
}

// NewRateLimiter builds a limiter with the given cooldown window.
func NewRateLimiter(client *redis.Client, window time.Duration, log *logrus.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RateLimiter{client: client, window: window, log: log}
}

// Allow reports whether username may perform action right now. The first
// call in a window claims the slot; repeats within the window are denied.
func (r *RateLimiter) Allow(ctx context.Context, username, action string) bool {
	if r == nil || r.client == nil {
		return true
	}
	key := fmt.Sprintf("ratelimit:%s:%s", action, username)
	ok, err := r.client.SetNX(ctx, key, 1, r.window).Result()
	if err != nil {
		r.log.WithError(err).Warn("rate limiter unavailable")
		return true
	}
	return ok
}
