package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	h "guestregistration/internal/delivery/http/helpers"
)

// tokenBucketScript refills the bucket for the elapsed whole intervals, then
// takes one token if available. It returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled        bool
	Prefix         string
	Capacity       int64
	RefillTokens   int64
	RefillInterval time.Duration
	TTL            time.Duration
}

// RateLimiter throttles public endpoints per client IP and route using a
// token bucket kept in Redis, so the limit holds across replicas. If Redis
// is unreachable requests are let through.
type RateLimiter struct {
	cfg    RateLimitConfig
	rdb    redis.Scripter
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimiter returns a limiter backed by rdb. A nil rdb or a disabled
// config yields a limiter that never blocks.
func NewRateLimiter(cfg RateLimitConfig, rdb redis.Scripter, logger *slog.Logger) *RateLimiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}
	return &RateLimiter{cfg: cfg, rdb: rdb, logger: logger, now: time.Now}
}

// Limit wraps next with the token bucket check.
func (l *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	if !l.cfg.Enabled || l.rdb == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)
		vals, err := tokenBucketScript.Run(r.Context(), l.rdb, []string{key},
			l.now().UnixMilli(),
			l.cfg.Capacity,
			l.cfg.RefillTokens,
			l.cfg.RefillInterval.Milliseconds(),
			int64(l.cfg.TTL/time.Second),
		).Result()
		if err != nil {
			l.logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request", "key", key, "err", err)
			next(w, r)
			return
		}
		arr, ok := vals.([]interface{})
		if !ok || len(arr) != 3 {
			l.logger.WarnContext(r.Context(), "unexpected rate limiter result", "key", key, "result", fmt.Sprintf("%#v", vals))
			next(w, r)
			return
		}
		allowed := asInt64(arr[0]) == 1
		remaining := asInt64(arr[1])
		retryMs := asInt64(arr[2])

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.cfg.Capacity, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			secs := int64(math.Ceil(float64(retryMs) / 1000.0))
			w.Header().Set("Retry-After", strconv.FormatInt(max(secs, 0), 10))
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (l *RateLimiter) key(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	if ip == "" {
		ip = "unknown"
	}
	route := r.Pattern
	if route == "" {
		route = r.Method + " " + r.URL.Path
	}
	return strings.Join([]string{l.cfg.Prefix, "ip", ip, "route", route}, ":")
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
