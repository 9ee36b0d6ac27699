package emotionHandler

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	contextPkg "EmotionAnalyzer/pkg/context"
	"EmotionAnalyzer/pkg/handlerUtil"
	"EmotionAnalyzer/pkg/log"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const imageField = "image"

func (h *EmotionHandler) Analyze(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing multi-backend analysis request")

	file, err := h.imageFromForm(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	req := emotion.AnalyzeRequest{
		Backends: ctx.FormValue("backends"),
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	backends := h.emotionService.DefaultBackends()
	if req.Backends != "" {
		if backends, err = emotion.ParseBackends(req.Backends); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_backends")
		}
	}

	result, err := h.emotionService.AnalyzeBackends(c, file, backends)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_backends")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"result":     result,
		}).Info("Emotion analysis successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

func (h *EmotionHandler) AnalyzeFaces(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing face analysis request")

	file, err := h.imageFromForm(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image")
	}

	req := emotion.AnalyzeFacesRequest{
		DetectorBackend: strings.ToLower(strings.TrimSpace(ctx.FormValue("detector_backend"))),
	}
	if raw := ctx.FormValue("enforce_detection"); raw != "" {
		enforce, err := strconv.ParseBool(raw)
		if err != nil {
			return errHandler.HandleValidationError(ctx, requestID, errors.New("enforce_detection must be a boolean"), ctx.Path())
		}
		req.EnforceDetection = enforce
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	faces, err := h.emotionService.AnalyzeFaces(c, file, entity.DetectorBackend(req.DetectorBackend), req.EnforceDetection)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_faces")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id":       requestID,
			"path":             ctx.Path(),
			"detector_backend": req.DetectorBackend,
		}).Info("Face analysis successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, faces)
	}
}

// imageFromForm returns the uploaded image, telling a missing field apart from
// a field submitted without a file name.
func (h *EmotionHandler) imageFromForm(ctx *fiber.Ctx) (*multipart.FileHeader, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, emotion.ErrNoImageUploaded
	}

	files := form.File[imageField]
	if len(files) == 0 {
		if _, ok := form.Value[imageField]; ok {
			return nil, emotion.ErrEmptyFilename
		}
		return nil, emotion.ErrNoImageUploaded
	}

	file := files[0]
	h.log.WithFields(log.Fields{
		"request_id": h.middleware.GetRequestID(ctx),
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return nil, err
	}

	return file, nil
}
