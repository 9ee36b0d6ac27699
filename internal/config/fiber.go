package config

import (
	"EmotionAnalyzer/internal/api/emotion"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// uploadOverhead leaves room for multipart framing and the other form fields.
const uploadOverhead = 1 << 20

func NewFiber(logger *logrus.Logger, env *Env) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:           "Emotion Analyzer",
			BodyLimit:         int(env.MaxUploadSize) + uploadOverhead,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: env.AppEnv != "production",
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
			ErrorHandler:      errorHandler(logger),
		})

	return app
}

func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Error("Unhandled error")
		}

		if code == fiber.StatusRequestEntityTooLarge {
			return c.Status(fiber.StatusBadRequest).JSON(emotion.ErrorResponse{
				Error: emotion.ErrFileTooLarge.Error(),
				Code:  "FILE_TOO_LARGE",
			})
		}

		return c.Status(code).JSON(emotion.ErrorResponse{
			Error: err.Error(),
		})
	}
}
