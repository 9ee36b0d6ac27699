package config

import (
	emotionHandler "EmotionAnalyzer/internal/api/emotion/handler"
	emotionService "EmotionAnalyzer/internal/api/emotion/service"
	"EmotionAnalyzer/internal/middleware"
	"EmotionAnalyzer/pkg/deepface"
	"EmotionAnalyzer/pkg/metrics"
	"EmotionAnalyzer/pkg/redis"
	"EmotionAnalyzer/pkg/utils"
	websocketPkg "EmotionAnalyzer/pkg/websocket"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	env            *Env
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	recognizer     deepface.Recognizer
	emotionWS      websocketPkg.IWebsocket
	redisServer    redis.IRedis
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	emotionService emotionService.IEmotionService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		return nil, fmt.Errorf("env is required")
	}
	if server.recognizer == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New(server.env.MaxUploadSize)
	}
	if server.metrics == nil {
		server.registry = prometheus.NewRegistry()
		server.metrics = metrics.New(server.registry)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

// WithRecognizer uses an already built recognizer, mainly for tests.
func WithRecognizer(recognizer deepface.Recognizer) ServerOption {
	return func(s *Server) error {
		s.recognizer = recognizer
		return nil
	}
}

// WithDeepFace connects the recognizer selected by RECOGNIZER_TRANSPORT.
func WithDeepFace() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("env must be set before the recognizer")
		}

		switch s.env.RecognizerTransport {
		case TransportWS:
			ws := websocketPkg.NewAIWebSocketClient(s.env.AIEmotionWSURL, s.env.AnalyzeTimeout, s.env.DeepFaceSharedUploads, s.log)
			s.emotionWS = ws
			s.recognizer = ws
		default:
			client, err := deepface.NewClient(
				s.env.DeepFaceURL,
				&http.Client{Timeout: s.env.AnalyzeTimeout},
				s.env.DeepFaceSharedUploads,
				s.log,
			)
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to create DeepFace client: %v", err)
				}
				return fmt.Errorf("failed to create DeepFace client: %w", err)
			}
			s.recognizer = client
		}
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.env == nil {
			return fmt.Errorf("env must be set before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Options{
			Rate:      s.env.RateLimit,
			Burst:     s.env.RateBurst,
			JWTSecret: s.env.JWTAccessTokenSecret,
			Redis:     s.redisServer,
		})
		return nil
	}
}

// WithMetrics registers collectors on the default registry so /metrics also
// reports the Go runtime.
func WithMetrics() ServerOption {
	return func(s *Server) error {
		s.metrics = metrics.New(prometheus.DefaultRegisterer)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("env must be set before utils")
		}
		s.utils = utils.New(s.env.MaxUploadSize)
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Emotion Domain
	s.emotionService = emotionService.NewEmotionService(s.log, s.recognizer, s.metrics, s.utils, emotionService.Options{
		UploadDir:       s.env.UploadDir,
		DefaultBackends: s.env.Backends(),
	})
	emotionHandlers := emotionHandler.New(s.log, s.validator, s.middleware, s.emotionService, s.utils, s.env.AnalyzeTimeout)

	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	s.setupHealthCheck()
	s.setupMetrics()

	// Legacy clients post to /analyze at the root.
	emotionHandlers.Routes(s.engine)

	s.handlers = append(s.handlers, emotionHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	return s.engine.Listen(fmt.Sprintf(":%s", s.env.AppPort))
}

func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if s.emotionWS != nil {
		s.emotionWS.CloseConnections()
	}
	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Errorf("Failed to close Redis: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		c, cancel := context.WithTimeout(ctx.UserContext(), 3*time.Second)
		defer cancel()

		if err := s.emotionService.Ping(c); err != nil {
			s.log.Warnf("Recognizer health check failed: %v", err)
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message":    "Recognizer unavailable",
				"recognizer": err.Error(),
			})
		}

		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func (s *Server) setupMetrics() {
	var h http.Handler = promhttp.Handler()
	if s.registry != nil {
		h = promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	}
	s.engine.Get("/metrics", adaptor.HTTPHandler(h))
}
