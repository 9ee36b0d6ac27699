package middleware

import (
	"EmotionAnalyzer/pkg/redis"
	"EmotionAnalyzer/pkg/response"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ErrTooManyRequests = response.NewTaggedError(http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests")
)

type limiter interface {
	Allow(ctx context.Context, key string) bool
}

type rateLimiter struct {
	bucket    map[string]*rate.Limiter
	rate      rate.Limit
	burstSize int
	mutex     *sync.RWMutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*rate.Limiter),
		rate:      reqRate,
		burstSize: burstSize,
		mutex:     &sync.RWMutex{},
	}
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	r.mutex.RLock()
	l, exist := r.bucket[ip]
	r.mutex.RUnlock()
	if exist {
		return l
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exist := r.bucket[ip]; !exist {
		r.bucket[ip] = rate.NewLimiter(r.rate, r.burstSize)
	}

	return r.bucket[ip]
}

func (r *rateLimiter) Allow(_ context.Context, key string) bool {
	return r.GetLimiterFrom(key).Allow()
}

// redisRateLimiter allows burst requests per key per burst/rate window across
// every replica sharing the Redis instance, so the sustained rate matches the
// in-memory token bucket.
type redisRateLimiter struct {
	redis  redis.IRedis
	limit  int64
	window time.Duration
	log    *logrus.Logger
}

func newRedisRateLimiter(client redis.IRedis, limit rate.Limit, burst int, log *logrus.Logger) *redisRateLimiter {
	window := time.Second
	if limit > 0 {
		window = time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	}
	if window < time.Second {
		window = time.Second
	}

	return &redisRateLimiter{
		redis:  client,
		limit:  int64(burst),
		window: window,
		log:    log,
	}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) bool {
	count, err := r.redis.Hit(ctx, key, r.window)
	if err != nil {
		// Fail open while Redis is unreachable.
		r.log.Warnf("rate limiter unavailable, allowing request: %v", err)
		return true
	}
	return count <= r.limit
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()

	if !m.rateLimitter.Allow(ctx.UserContext(), clientIP) {
		m.log.Warnf("too many requests for IP %s", clientIP)
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": ErrTooManyRequests.Error(),
			"code":  "TOO_MANY_REQUESTS",
		})
	}

	return ctx.Next()
}
