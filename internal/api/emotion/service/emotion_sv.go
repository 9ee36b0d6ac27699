package emotionService

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"EmotionAnalyzer/pkg/log"
	"EmotionAnalyzer/pkg/metrics"
	"EmotionAnalyzer/pkg/normalize"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

func (s *emotionService) DefaultBackends() []entity.DetectorBackend {
	out := make([]entity.DetectorBackend, len(s.opts.DefaultBackends))
	copy(out, s.opts.DefaultBackends)
	return out
}

func (s *emotionService) Ping(ctx context.Context) error {
	return s.recognizer.Ping(ctx)
}

// AnalyzeBackends runs every backend against the same transient copy of
// file and reports the dominant emotion of the first face per backend.
func (s *emotionService) AnalyzeBackends(ctx context.Context, file *multipart.FileHeader, backends []entity.DetectorBackend) (emotion.BackendEmotions, error) {
	if len(backends) == 0 {
		backends = s.opts.DefaultBackends
	}

	path, err := s.utils.SaveTransientFile(s.opts.UploadDir, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", emotion.ErrInternalServerError, err)
	}
	defer s.removeTransient(ctx, path)

	dominant := make([]string, len(backends))
	g, gctx := errgroup.WithContext(ctx)
	for i, backend := range backends {
		i, backend := i, backend
		g.Go(func() error {
			result, err := s.analyze(gctx, entity.NewAnalyzeRequest(path, backend, false))
			if err != nil {
				return fmt.Errorf("%s: %w", backend, err)
			}
			label, err := dominantEmotion(result)
			if err != nil {
				return fmt.Errorf("%s: %w", backend, err)
			}
			dominant[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(emotion.BackendEmotions, len(backends))
	for i, backend := range backends {
		out[string(backend)] = dominant[i]
	}

	return out, nil
}

// AnalyzeFaces returns the normalized per-face array for one backend.
func (s *emotionService) AnalyzeFaces(ctx context.Context, file *multipart.FileHeader, backend entity.DetectorBackend, enforce bool) (any, error) {
	path, err := s.utils.SaveTransientFile(s.opts.UploadDir, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", emotion.ErrInternalServerError, err)
	}
	defer s.removeTransient(ctx, path)

	return s.analyze(ctx, entity.NewAnalyzeRequest(path, s.backendOrDefault(backend), enforce))
}

func (s *emotionService) AnalyzeFrame(ctx context.Context, frame []byte, backend entity.DetectorBackend) (any, error) {
	if err := s.utils.ValidateImageBytes(frame); err != nil {
		return nil, err
	}

	path, err := s.utils.WriteTransientFile(s.opts.UploadDir, frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", emotion.ErrInternalServerError, err)
	}
	defer s.removeTransient(ctx, path)

	return s.analyze(ctx, entity.NewAnalyzeRequest(path, s.backendOrDefault(backend), false))
}

func (s *emotionService) analyze(ctx context.Context, req *entity.AnalyzeRequest) (any, error) {
	start := time.Now()
	raw, err := s.recognizer.Analyze(ctx, req)
	elapsed := time.Since(start)

	entry := log.WithRequestID(s.log, ctx).WithFields(log.Fields{
		"detector_backend": req.DetectorBackend,
		"latency_ms":       elapsed.Milliseconds(),
	})

	switch {
	case err == nil:
		s.metrics.Observe(string(req.DetectorBackend), metrics.OutcomeSuccess, elapsed)
	case errors.Is(err, emotion.ErrNoFaceDetected):
		s.metrics.Observe(string(req.DetectorBackend), metrics.OutcomeNoFace, elapsed)
		entry.Info("No face detected")
		return nil, err
	default:
		s.metrics.Observe(string(req.DetectorBackend), metrics.OutcomeError, elapsed)
		entry.WithError(err).Warn("Recognizer call failed")
		return nil, err
	}

	entry.Debug("Recognizer call finished")
	return normalize.Normalize(raw), nil
}

func (s *emotionService) backendOrDefault(backend entity.DetectorBackend) entity.DetectorBackend {
	if backend == "" {
		return s.opts.DefaultBackends[0]
	}
	return backend
}

func (s *emotionService) removeTransient(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithRequestID(s.log, ctx).WithFields(log.Fields{
			"path":  path,
			"error": err.Error(),
		}).Error("Failed to remove transient file")
	}
}

// dominantEmotion reads the first face's label from a normalized result.
func dominantEmotion(result any) (string, error) {
	face, ok := result.(map[string]any)
	if !ok {
		faces, isList := result.([]any)
		if !isList {
			return "", fmt.Errorf("%w: unexpected result shape %T", emotion.ErrAnalysisFailed, result)
		}
		if len(faces) == 0 {
			return "", emotion.ErrNoFaceDetected
		}
		if face, ok = faces[0].(map[string]any); !ok {
			return "", fmt.Errorf("%w: unexpected face shape %T", emotion.ErrAnalysisFailed, faces[0])
		}
	}

	label, ok := face["dominant_emotion"].(string)
	if !ok || label == "" {
		return "", fmt.Errorf("%w: result has no dominant_emotion", emotion.ErrAnalysisFailed)
	}
	if !entity.ValidEmotion(label) {
		return "", fmt.Errorf("%w: unknown emotion label %q", emotion.ErrAnalysisFailed, label)
	}

	return label, nil
}
