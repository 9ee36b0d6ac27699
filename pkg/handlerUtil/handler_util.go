package handlerUtil

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/pkg/log"
	"EmotionAnalyzer/pkg/response"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle writes the JSON error body for err. Tagged errors keep their status;
// analysis failures surface the wrapped message, everything else is opaque.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.WithFields(fields).Warn("Operation timed out")
		return h.HandleRequestTimeout(c)
	}

	if errors.Is(err, context.Canceled) {
		h.logger.WithFields(fields).Info("Client went away")
		return c.Status(fiber.StatusRequestTimeout).JSON(emotion.ErrorResponse{
			Error: "request canceled",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code

		// Detection domain errors
		switch {
		case errors.Is(respErr, emotion.ErrAnalysisFailed), errors.Is(respErr, emotion.ErrRecognizerUnavailable):
			h.logger.WithFields(fields).Error("Analysis failed")
			return c.Status(respErr.Code).JSON(emotion.ErrorResponse{
				Error: err.Error(),
				Code:  respErr.Tag,
			})
		case errors.Is(respErr, emotion.ErrInternalServerError):
			h.logger.WithFields(fields).Error("Internal server error")
			return c.Status(fiber.StatusInternalServerError).JSON(emotion.ErrorResponse{
				Error: "Internal server error",
			})
		}

		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(emotion.ErrorResponse{
			Error: respErr.Error(),
			Code:  respErr.Tag,
		})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":    "An unexpected error occurred",
		"trace_id": traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(emotion.ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(emotion.ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusRequestTimeout),
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(emotion.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
