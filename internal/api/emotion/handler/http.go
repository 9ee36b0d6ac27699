package emotionHandler

import (
	"EmotionAnalyzer/internal/entity"
	emotionService "EmotionAnalyzer/internal/api/emotion/service"
	"EmotionAnalyzer/internal/middleware"
	"EmotionAnalyzer/pkg/utils"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EmotionHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	emotionService emotionService.IEmotionService
	utils          utils.IUtils
	timeout        time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	es emotionService.IEmotionService,
	utils utils.IUtils,
	timeout time.Duration,
) *EmotionHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &EmotionHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		emotionService: es,
		utils:          utils,
		timeout:        timeout,
	}
}

func (h *EmotionHandler) Start(srv fiber.Router) {
	h.Routes(srv)

	wsMiddleware := func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		backend := strings.ToLower(c.Query("detector_backend"))
		if backend != "" && !entity.DetectorBackend(backend).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "unknown detector backend: " + backend,
				"code":  "UNKNOWN_BACKEND",
			})
		}
		c.Locals(backendLocal, entity.DetectorBackend(backend))
		return c.Next()
	}

	emotion := srv.Group("/emotion")
	emotion.Use("/ws", h.middleware.NewTokenMiddleware, wsMiddleware)
	emotion.Get("/ws", websocket.New(h.handleWebSocket))
}

// Routes registers the upload endpoints only, so they can also be mounted
// at the root for legacy clients of the bare /analyze path.
func (h *EmotionHandler) Routes(srv fiber.Router) {
	srv.Post("/analyze", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.Analyze)
	srv.Post("/analyze/faces", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.AnalyzeFaces)
}
