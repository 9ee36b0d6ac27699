package deepface

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Recognizer represents the external facial analysis service.
type Recognizer interface {
	// Analyze returns the raw per-face result for the image at req.ImagePath.
	Analyze(ctx context.Context, req *entity.AnalyzeRequest) (any, error)
	// Ping reports whether the service can currently be reached.
	Ping(ctx context.Context) error
}

// Numbers stay json.Number so the normalizer decides their final type.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// AnalyzePayload is the body accepted by the analyzer's /analyze route.
type AnalyzePayload struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	DetectorBackend  string   `json:"detector_backend"`
	EnforceDetection bool     `json:"enforce_detection"`
	Align            bool     `json:"align"`
}

type AnalyzeResponse struct {
	Results   any    `json:"results"`
	Error     string `json:"error,omitempty"`
	Exception string `json:"exception,omitempty"`
}

func (r *AnalyzeResponse) message() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Exception
}

// NewPayload builds the request body. With sharedUploads the analyzer reads
// the transient file itself; otherwise the image travels as a data URI.
func NewPayload(req *entity.AnalyzeRequest, sharedUploads bool) (*AnalyzePayload, error) {
	payload := &AnalyzePayload{
		Img:              req.ImagePath,
		Actions:          req.Actions,
		DetectorBackend:  string(req.DetectorBackend),
		EnforceDetection: req.EnforceDetection,
		Align:            req.Align,
	}
	if len(payload.Actions) == 0 {
		payload.Actions = []string{entity.ActionEmotion}
	}

	if sharedUploads {
		return payload, nil
	}

	data, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read transient file: %w", err)
	}

	payload.Img = fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(data), base64.StdEncoding.EncodeToString(data))
	return payload, nil
}

// DecodeResponse parses an analyzer reply and maps reported failures onto
// the emotion error set.
func DecodeResponse(body []byte) (any, error) {
	var resp AnalyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response body: %v", emotion.ErrAnalysisFailed, err)
	}

	if msg := resp.message(); msg != "" {
		return nil, MapFailure(msg)
	}

	if resp.Results == nil {
		return []any{}, nil
	}

	return resp.Results, nil
}

// MapFailure turns an analyzer error message into a typed error.
func MapFailure(msg string) error {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "face could not be detected") || strings.Contains(lower, "no face") {
		return fmt.Errorf("%w: %s", emotion.ErrNoFaceDetected, msg)
	}
	return fmt.Errorf("%w: %s", emotion.ErrAnalysisFailed, msg)
}
