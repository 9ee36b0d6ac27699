package emotionService

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"EmotionAnalyzer/pkg/deepface"
	"EmotionAnalyzer/pkg/metrics"
	"EmotionAnalyzer/pkg/utils"
	"mime/multipart"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IEmotionService interface {
	AnalyzeBackends(ctx context.Context, file *multipart.FileHeader, backends []entity.DetectorBackend) (emotion.BackendEmotions, error)
	AnalyzeFaces(ctx context.Context, file *multipart.FileHeader, backend entity.DetectorBackend, enforce bool) (any, error)
	AnalyzeFrame(ctx context.Context, frame []byte, backend entity.DetectorBackend) (any, error)
	DefaultBackends() []entity.DetectorBackend
	Ping(ctx context.Context) error
}

type Options struct {
	UploadDir       string
	DefaultBackends []entity.DetectorBackend
}

type emotionService struct {
	log        *logrus.Logger
	recognizer deepface.Recognizer
	metrics    *metrics.Metrics
	utils      utils.IUtils
	opts       Options
}

func NewEmotionService(
	log *logrus.Logger,
	recognizer deepface.Recognizer,
	metrics *metrics.Metrics,
	utils utils.IUtils,
	opts Options,
) IEmotionService {
	if len(opts.DefaultBackends) == 0 {
		opts.DefaultBackends = []entity.DetectorBackend{entity.BackendMTCNN, entity.BackendRetinaFace, entity.BackendMediaPipe}
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}

	return &emotionService{
		log:        log,
		recognizer: recognizer,
		metrics:    metrics,
		utils:      utils,
		opts:       opts,
	}
}
