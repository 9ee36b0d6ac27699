package middleware

import (
	"EmotionAnalyzer/pkg/redis"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type Options struct {
	// Rate is requests per second per client IP, Burst the bucket size.
	Rate      float64
	Burst     int
	JWTSecret string
	// Redis switches rate limiting to a shared fixed window when set.
	Redis redis.IRedis
}

type middleware struct {
	token               *tokenMiddleware
	rateLimitter        limiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

func New(logger *logrus.Logger, opts Options) Middleware {
	if opts.Rate <= 0 {
		opts.Rate = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}

	var limit limiter = newRateLimiter(rate.Limit(opts.Rate), opts.Burst)
	if opts.Redis != nil {
		limit = newRedisRateLimiter(opts.Redis, rate.Limit(opts.Rate), opts.Burst, logger)
	}

	return &middleware{
		token:               newTokenMiddleware(opts.JWTSecret),
		rateLimitter:        limit,
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return LoggerConfig(m.log)
}
