package config

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

type Env struct {
	AppPort string `envconfig:"APP_PORT" default:"3000"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	UploadDir       string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadSize   int64         `envconfig:"MAX_UPLOAD_SIZE" default:"5242880"`
	DefaultBackends string        `envconfig:"DEFAULT_BACKENDS" default:"mtcnn,retinaface,mediapipe"`
	AnalyzeTimeout  time.Duration `envconfig:"ANALYZE_TIMEOUT" default:"60s"`

	RecognizerTransport   string `envconfig:"RECOGNIZER_TRANSPORT" default:"http"`
	DeepFaceURL           string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceSharedUploads bool   `envconfig:"DEEPFACE_SHARED_UPLOADS" default:"false"`
	AIEmotionWSURL        string `envconfig:"AI_EMOTION_WS_URL"`

	RedisAddress  string `envconfig:"REDIS_ADDRESS"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RateLimit float64 `envconfig:"RATE_LIMIT" default:"5"`
	RateBurst int     `envconfig:"RATE_BURST" default:"10"`

	JWTAccessTokenSecret string `envconfig:"JWT_ACCESS_TOKEN_SECRET"`

	backends []entity.DetectorBackend
}

// LoadEnv reads an optional .env file and then the process environment.
func LoadEnv(files ...string) (*Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := env.validate(); err != nil {
		return nil, err
	}

	return &env, nil
}

func (e *Env) validate() error {
	backends, err := emotion.ParseBackends(e.DefaultBackends)
	if err != nil {
		return fmt.Errorf("DEFAULT_BACKENDS: %w", err)
	}
	e.backends = backends

	switch e.RecognizerTransport {
	case TransportHTTP:
		if e.DeepFaceURL == "" {
			return fmt.Errorf("DEEPFACE_URL is required for the http transport")
		}
	case TransportWS:
		if e.AIEmotionWSURL == "" {
			return fmt.Errorf("AI_EMOTION_WS_URL is required for the ws transport")
		}
	default:
		return fmt.Errorf("RECOGNIZER_TRANSPORT must be %q or %q, got %q", TransportHTTP, TransportWS, e.RecognizerTransport)
	}

	if e.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	return nil
}

func (e *Env) Backends() []entity.DetectorBackend {
	return append([]entity.DetectorBackend(nil), e.backends...)
}
