package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"contact-manager-backend/pkg/apperror"
	"contact-manager-backend/pkg/audit"
	"contact-manager-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis (default: "rl:ip:")
	KeyPrefix string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
	// Audit receives one event per rejected request (optional)
	Audit *audit.Logger
}

// DefaultRateLimitConfig returns sensible defaults for API rate limiting
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     300,
		Window:    time.Minute,
		KeyPrefix: "rl:ip:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type rateLimiter struct {
	config RateLimitConfig
	redis  goredis.Scripter

	entries sync.Map // key -> *rateLimitEntry

	sweepMu   sync.Mutex
	nextSweep time.Time
}

// RateLimitMiddleware limits requests per key. Counters live in Redis when
// client is non-nil and fall back to process memory otherwise or on Redis
// errors (unless FailClosed).
func RateLimitMiddleware(config RateLimitConfig, client goredis.Scripter) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = DefaultRateLimitConfig().KeyFunc
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	rl := &rateLimiter{config: config, redis: client}
	return rl.handle
}

func (rl *rateLimiter) handle(c *gin.Context) {
	fullKey := rl.config.KeyPrefix + rl.config.KeyFunc(c)
	now := time.Now()

	var count int
	var resetAt time.Time

	if rl.redis != nil {
		var err error
		count, resetAt, err = rl.checkRedis(c.Request.Context(), fullKey)
		if err != nil {
			logger.Log.Warn("Rate limit store error", "error", err)
			if rl.config.FailClosed {
				c.Error(apperror.Unavailable("Service temporarily unavailable. Please try again.", err))
				c.Abort()
				return
			}
			count, resetAt = rl.checkInMemory(fullKey, now)
		}
	} else {
		count, resetAt = rl.checkInMemory(fullKey, now)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
	c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

	if count > rl.config.Limit {
		retryAfter := int(time.Until(resetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("Retry-After", strconv.Itoa(retryAfter))

		logger.Log.Warn("Rate limit exceeded", "key", fullKey, "path", c.FullPath())
		rl.config.Audit.RateLimitTriggered(c.Request.Context(), c.ClientIP(), c.FullPath())
		c.Error(apperror.TooManyRequests("Rate limit exceeded. Please try again later."))
		c.Abort()
		return
	}

	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(rl.config.Limit-count, 0)))
	c.Next()
}

// checkRedis checks rate limit using Redis with atomic Lua script
func (rl *rateLimiter) checkRedis(ctx context.Context, key string) (int, time.Time, error) {
	ttlSeconds := int(rl.config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rl.redis.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// checkInMemory checks rate limit using the in-memory store
func (rl *rateLimiter) checkInMemory(key string, now time.Time) (int, time.Time) {
	rl.sweep(now)

	entryI, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		resetAt: now.Add(rl.config.Window),
	})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(rl.config.Window)
	}
	entry.count++

	return entry.count, entry.resetAt
}

// sweep drops expired in-memory entries, at most once per window. It runs
// on the request path; the limiter starts no goroutines.
func (rl *rateLimiter) sweep(now time.Time) {
	rl.sweepMu.Lock()
	if now.Before(rl.nextSweep) {
		rl.sweepMu.Unlock()
		return
	}
	rl.nextSweep = now.Add(rl.config.Window)
	rl.sweepMu.Unlock()

	rl.entries.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			rl.entries.Delete(key)
		}
		entry.mu.Unlock()
		return true
	})
}
