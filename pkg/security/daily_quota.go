package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const dayWindow = 24 * time.Hour

// Lua script for sliding window quota
// KEYS[1] = quota key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: {allowed (1/0), seconds until the oldest entry leaves the window}
const dailyQuotaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local retry = window
    if oldest[2] then
        retry = tonumber(oldest[2]) + window - now
    end
    return {0, retry}
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return {1, 0}
`

// DailyQuota caps submissions per key over a rolling 24 hours. It backs the
// short-window rate limiter so a client cannot stay just under the per-minute
// budget all day.
type DailyQuota struct {
	client    *goredis.Client
	maxPerDay int
	keyPrefix string
}

// NewDailyQuota returns nil when there is no Redis client or no limit, which
// disables the quota.
func NewDailyQuota(client *goredis.Client, maxPerDay int) *DailyQuota {
	if client == nil || maxPerDay <= 0 {
		return nil
	}
	return &DailyQuota{
		client:    client,
		maxPerDay: maxPerDay,
		keyPrefix: "quota:contact:",
	}
}

// Allow records one submission for key.
// Returns (allowed, retryAfter, error). On Redis errors the request is
// allowed and the error returned for logging.
func (q *DailyQuota) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if q == nil {
		return true, 0, nil
	}

	now := time.Now().Unix()
	result, err := q.client.Eval(ctx, dailyQuotaScript, []string{q.keyPrefix + key},
		q.maxPerDay, int(dayWindow.Seconds()), now).Result()
	if err != nil {
		return true, 0, fmt.Errorf("daily quota check failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return true, 0, fmt.Errorf("unexpected result type from quota script")
	}
	allowed, _ := arr[0].(int64)
	retry, _ := arr[1].(int64)
	return allowed == 1, time.Duration(retry) * time.Second, nil
}

// Remaining returns how many submissions key has left today.
func (q *DailyQuota) Remaining(ctx context.Context, key string) (int, error) {
	if q == nil {
		return 0, fmt.Errorf("daily quota disabled")
	}
	fullKey := q.keyPrefix + key
	now := time.Now().Unix()

	// Clean up expired entries first
	q.client.ZRemRangeByScore(ctx, fullKey, "0", fmt.Sprintf("%d", now-int64(dayWindow.Seconds())))
	count, err := q.client.ZCard(ctx, fullKey).Result()
	if err != nil {
		return 0, err
	}
	return max(q.maxPerDay-int(count), 0), nil
}
