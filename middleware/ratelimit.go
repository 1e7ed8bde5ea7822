// middleware/ratelimit.go
package middleware

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"hangeul/config"

	"github.com/gofiber/fiber/v2"
)

// Token bucket rate limiter implementation
type TokenBucket struct {
	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	lastRefillTime time.Time
	mu             sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: now,
	}
}

func (tb *TokenBucket) allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefillTime = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter keeps one bucket per key.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.Mutex

	maxRequests   int
	windowSeconds int
	now           func() time.Time
}

func NewRateLimiter(maxRequests, windowSeconds int) *RateLimiter {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &RateLimiter{
		buckets:       make(map[string]*TokenBucket),
		maxRequests:   maxRequests,
		windowSeconds: windowSeconds,
		now:           time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.maxRequests) / float64(rl.windowSeconds) // tokens/sec
		bucket = NewTokenBucket(float64(rl.maxRequests), refillRate, now)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	return bucket.allow(now)
}

// Prune drops buckets idle for longer than maxIdle and returns how many
// were removed.
func (rl *RateLimiter) Prune(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		if now.Sub(bucket.lastRefillTime) > maxIdle {
			delete(rl.buckets, key)
			removed++
		}
		bucket.mu.Unlock()
	}
	return removed
}

// Limiters groups the per-route limiters of the API.
type Limiters struct {
	enabled   bool
	general   *RateLimiter
	auth      *RateLimiter
	heartbeat *RateLimiter
}

func NewLimiters(conf *config.Config) *Limiters {
	rl := conf.RateLimit
	return &Limiters{
		enabled:   rl.Enabled,
		general:   NewRateLimiter(rl.MaxRequests, rl.WindowSeconds),
		auth:      NewRateLimiter(rl.AuthMaxRequests, rl.AuthWindowSeconds),
		heartbeat: NewRateLimiter(rl.HeartbeatMax, rl.HeartbeatWindow),
	}
}

// StartPruning removes idle buckets every 10 minutes until ctx is done.
func (l *Limiters) StartPruning(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, rl := range []*RateLimiter{l.general, l.auth, l.heartbeat} {
					rl.Prune(30 * time.Minute)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// General applies the per-IP limit to API routes.
func (l *Limiters) General() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled {
			return c.Next()
		}
		path := c.Path()
		if path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/ws") {
			return c.Next()
		}

		if !l.general.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Rate limit exceeded. Please try again later.",
			})
		}
		return c.Next()
	}
}

// Auth applies the stricter per-IP limit to login and registration.
func (l *Limiters) Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled {
			return c.Next()
		}
		if !l.auth.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many authentication attempts. Please try again later.",
			})
		}
		return c.Next()
	}
}

// Heartbeat limits heartbeats per authenticated user. It must run after
// Auth.Required.
func (l *Limiters) Heartbeat() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled {
			return c.Next()
		}
		userID, err := GetUserID(c)
		if err != nil {
			return err
		}
		if !l.heartbeat.Allow(strconv.FormatUint(uint64(userID), 10)) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many heartbeats",
			})
		}
		return c.Next()
	}
}
