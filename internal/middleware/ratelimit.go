package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/qrfood/eatery-backend/internal/config"
	"github.com/qrfood/eatery-backend/internal/response"
)

// bucketScript implements a token bucket atomically inside Redis, so the
// limit holds across multiple API instances.  It returns three values:
// allowed (0/1), tokens remaining, and milliseconds until the next refill.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'refilled_at')
local tokens = tonumber(state[1])
local refilledAt = tonumber(state[2])
if tokens == nil or refilledAt == nil then
	tokens = capacity
	refilledAt = now
end

local elapsed = math.max(0, now - refilledAt)
local steps = math.floor(elapsed / interval)
if steps > 0 then
	tokens = math.min(capacity, tokens + steps * refill)
	refilledAt = refilledAt + steps * interval
end

local allowed = 0
local wait = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	wait = math.max(0, interval - (now - refilledAt))
end

redis.call('HMSET', key, 'tokens', tokens, 'refilled_at', refilledAt)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket rate-limits credential-bearing routes.  Login, magic-link
// and password-reset requests all either run bcrypt or send mail, so they
// are the natural target for brute-force and mail-bomb attempts.  With no
// Redis client the middleware is a no-op and the routes stay open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			res, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				// Fail open: an unreachable limiter must not lock everyone out.
				if cfg.Debug {
					c.Logger().Warnf("rate limiter unavailable for %s: %v", key, err)
				}
				return next(c)
			}

			allowed, remaining, waitMs := res[0] == 1, res[1], res[2]
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(waitMs) / 1000))
				h.Set("Retry-After", strconv.Itoa(secs))
				return response.Fail(c, http.StatusTooManyRequests,
					response.CodeRateLimited, "too many requests, slow down")
			}
			return next(c)
		}
	}
}

// rateKey scopes the bucket per client.  Auth routes are mostly hit
// anonymously, so the default is per-IP; "user" keys on the authenticated
// principal and "ip_route" separates e.g. login from password-reset.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	switch cfg.KeyStrategy {
	case "user":
		if auth, ok := Auth(c); ok && auth.UserID != 0 {
			return cfg.Prefix + ":user:" + strconv.FormatUint(auth.UserID, 10)
		}
		return cfg.Prefix + ":ip:" + ip
	case "ip_route":
		return cfg.Prefix + ":ip:" + ip + ":" + c.Request().Method + ":" + c.Path()
	default:
		return cfg.Prefix + ":ip:" + ip
	}
}
