package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis
	KeyPrefix string
	// Reject instead of falling back to memory when Redis errors
	FailClosed bool
	// Rolling 24h cap per key, enforced only with Redis (0 disables)
	DailyLimit int
}

// ContactRateLimitConfig limits contact submissions per client IP.
func ContactRateLimitConfig(limit int, window time.Duration, dailyLimit int) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		DailyLimit: dailyLimit,
		KeyPrefix:  "rl:contact:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns {count, ttl}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-key request budget. With a Redis client the
// budget is a shared fixed window; without one, or when Redis fails and
// FailClosed is false, each key gets an in-process token bucket.
type RateLimiter struct {
	cfg      RateLimitConfig
	redis    *goredis.Client
	quota    *security.DailyQuota
	security *security.SecurityLogger

	mu        sync.Mutex
	local     map[string]*localEntry
	lastSweep time.Time
}

func NewRateLimiter(cfg RateLimitConfig, redisClient *goredis.Client, sec *security.SecurityLogger) *RateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &RateLimiter{
		cfg:       cfg,
		redis:     redisClient,
		quota:     security.NewDailyQuota(redisClient, cfg.DailyLimit),
		security:  sec,
		local:     make(map[string]*localEntry),
		lastSweep: time.Now(),
	}
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.cfg.KeyPrefix + rl.cfg.KeyFunc(c)
		now := time.Now()

		var (
			allowed    bool
			remaining  int
			retryAfter time.Duration
		)

		if rl.redis != nil {
			count, ttl, err := rl.checkRedis(c.Request.Context(), key)
			if err != nil {
				if rl.cfg.FailClosed {
					_ = c.Error(apperror.New(http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", err))
					c.Abort()
					return
				}
				allowed, remaining, retryAfter = rl.checkLocal(key, now)
			} else {
				allowed = count <= rl.cfg.Limit
				remaining = max(rl.cfg.Limit-count, 0)
				retryAfter = ttl
			}
		} else {
			allowed, remaining, retryAfter = rl.checkLocal(key, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if allowed && rl.quota != nil {
			ok, retry, err := rl.quota.Allow(c.Request.Context(), rl.cfg.KeyFunc(c))
			if err != nil {
				// Fails open: the request continues and the error is only logged.
				_ = c.Error(apperror.Internal(err))
			}
			if !ok {
				allowed, retryAfter = false, retry
			}
		}

		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))

			reqID, _ := c.Get("RequestID")
			reqIDStr, _ := reqID.(string)
			rl.security.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), reqIDStr, c.FullPath())
			metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()

			_ = c.Error(apperror.TooManyRequests("Too many messages. Please try again later."))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) checkRedis(ctx context.Context, key string) (int, time.Duration, error) {
	ttlSeconds := int(rl.cfg.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rl.redis.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, 0, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Duration(ttl) * time.Second, nil
}

func (rl *RateLimiter) checkLocal(key string, now time.Time) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	e, ok := rl.local[key]
	if !ok {
		every := rl.cfg.Window / time.Duration(rl.cfg.Limit)
		e = &localEntry{limiter: rate.NewLimiter(rate.Every(every), rl.cfg.Limit)}
		rl.local[key] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	return true, int(e.limiter.TokensAt(now)), 0
}

// sweep drops idle keys; callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	idle := 2 * rl.cfg.Window
	if now.Sub(rl.lastSweep) < idle {
		return
	}
	for k, e := range rl.local {
		if now.Sub(e.lastSeen) > idle {
			delete(rl.local, k)
		}
	}
	rl.lastSweep = now
}
