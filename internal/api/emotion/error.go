package emotion

import (
	"EmotionAnalyzer/pkg/response"
	"net/http"
)

var (
	ErrNoImageUploaded       = response.NewTaggedError(http.StatusBadRequest, "NO_IMAGE", "No image uploaded")
	ErrEmptyFilename         = response.NewTaggedError(http.StatusBadRequest, "EMPTY_FILENAME", "Empty filename")
	ErrInvalidFileType       = response.NewTaggedError(http.StatusBadRequest, "INVALID_FILE_TYPE", "invalid file type, only images are allowed")
	ErrFileTooLarge          = response.NewTaggedError(http.StatusBadRequest, "FILE_TOO_LARGE", "file too large")
	ErrUnknownBackend        = response.NewTaggedError(http.StatusBadRequest, "UNKNOWN_BACKEND", "unknown detector backend")
	ErrNoFaceDetected        = response.NewTaggedError(http.StatusUnprocessableEntity, "NO_FACE_DETECTED", "no face detected")
	ErrRecognizerUnavailable = response.NewTaggedError(http.StatusBadGateway, "RECOGNIZER_UNAVAILABLE", "recognition service unavailable")
	ErrAnalysisFailed        = response.NewTaggedError(http.StatusInternalServerError, "ANALYSIS_FAILED", "analysis failed")
	ErrInternalServerError   = response.NewError(http.StatusInternalServerError, "internal server error")
)
