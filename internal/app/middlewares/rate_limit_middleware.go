package middlewares

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

// RateLimiter defines the interface for rate limiting implementations
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit Rate) (bool, RateLimitInfo)
	Reset(ctx context.Context, key string) error
}

// Rate is a named request budget per window. Limits with different names
// count in separate buckets.
type Rate struct {
	Name     string
	Requests int
	Window   time.Duration
}

// RateLimitInfo contains information about the current rate limit status
type RateLimitInfo struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter RateLimiter
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware
func NewRateLimitMiddleware(limiter RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

// RedisRateLimiter implements RateLimiter using Redis
type RedisRateLimiter struct {
	redis     *redis.Client
	keyPrefix string
}

// NewRedisRateLimiter creates a new RedisRateLimiter
func NewRedisRateLimiter(redis *redis.Client, cfg *infrastructures.AppConfig) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:     redis,
		keyPrefix: cfg.RATE_LIMIT_PREFIX,
	}
}

// Allow counts the request in a sliding window kept as a sorted set of
// request timestamps. Redis failures let the request through.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit Rate) (bool, RateLimitInfo) {
	now := time.Now()
	windowKey := l.windowKey(key)
	info := RateLimitInfo{Limit: limit.Requests, Reset: now.Add(limit.Window)}

	// MULTI/EXEC so the count and the insert see the same window
	var seen *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, windowKey, "0", strconv.FormatInt(now.Add(-limit.Window).UnixNano(), 10))
		seen = pipe.ZCard(ctx, windowKey)
		pipe.ZAdd(ctx, windowKey, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
		pipe.Expire(ctx, windowKey, limit.Window)
		return nil
	})
	if err != nil {
		logrus.WithField("key", windowKey).Warnf("rate limiter unavailable: %v", err)
		return true, info
	}

	// seen excludes the request just added
	info.Remaining = limit.Requests - int(seen.Val()) - 1
	if info.Remaining < 0 {
		info.Remaining = 0
		return false, info
	}
	return true, info
}

func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, l.windowKey(key)).Err()
}

func (l *RedisRateLimiter) windowKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)
}

// Common rate limits
var (
	PublicAPILimit = Rate{
		Name:     "public",
		Requests: 30,
		Window:   time.Minute,
	}

	AuthenticatedAPILimit = Rate{
		Name:     "api",
		Requests: 60,
		Window:   time.Minute,
	}

	// ModerationAPILimit covers reviewer endpoints, which page through queues
	ModerationAPILimit = Rate{
		Name:     "moderation",
		Requests: 120,
		Window:   time.Minute,
	}

	// TransitionLimit caps state-changing workflow calls per principal
	TransitionLimit = Rate{
		Name:     "transition",
		Requests: 20,
		Window:   time.Minute,
	}

	RegisterLimit = Rate{
		Name:     "register",
		Requests: 10,
		Window:   time.Minute,
	}
)

// LimitByIP creates a middleware that rate limits by IP address
func (m *RateLimitMiddleware) LimitByIP(limit Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return m.handleRateLimit(c, limitKey(limit, "ip", getIPAddress(c)), limit)
	}
}

// LimitByUser creates a middleware that rate limits by user ID
func (m *RateLimitMiddleware) LimitByUser(limit Rate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFrom(c); ok {
			return m.handleRateLimit(c, limitKey(limit, "user", principal.ID.String()), limit)
		}
		return m.LimitByIP(limit)(c)
	}
}

// limitKey scopes a caller to one named limit, e.g. "register:ip:10.0.0.1".
func limitKey(limit Rate, kind string, id string) string {
	return fmt.Sprintf("%s:%s:%s", limit.Name, kind, id)
}

// handleRateLimit handles the rate limiting logic
func (m *RateLimitMiddleware) handleRateLimit(c *fiber.Ctx, key string, limit Rate) error {
	// Check rate limit
	allowed, info := m.limiter.Allow(c.UserContext(), key, limit)

	// Set rate limit headers
	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.Reset.Unix()))

	if !allowed {
		return pkg.ErrorResponse(c, errors.NewTooManyRequestsError("Rate limit exceeded", info.Limit, info.Reset.Unix()))
	}

	return c.Next()
}

// getIPAddress gets the client IP address from request
func getIPAddress(c *fiber.Ctx) string {
	// Try X-Forwarded-For header
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Try X-Real-IP header
	if xrip := c.Get("X-Real-IP"); xrip != "" {
		return xrip
	}

	// Fall back to RemoteIP
	return c.IP()
}
