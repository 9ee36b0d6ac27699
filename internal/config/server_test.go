package config

import (
	"EmotionAnalyzer/internal/entity"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type stubRecognizer struct {
	pingErr error
}

func (s *stubRecognizer) Analyze(ctx context.Context, req *entity.AnalyzeRequest) (any, error) {
	return []any{map[string]any{"dominant_emotion": "neutral"}}, nil
}

func (s *stubRecognizer) Ping(ctx context.Context) error {
	return s.pingErr
}

func newTestServer(t *testing.T, rec *stubRecognizer) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env, err := LoadEnv(t.TempDir() + "/missing.env")
	if err != nil {
		t.Fatal(err)
	}
	env.UploadDir = t.TempDir()

	server, err := NewServer(
		WithFiber(NewFiber(logger, env)),
		WithLogger(logger),
		WithEnv(env),
		WithRecognizer(rec),
		WithMiddleware(),
		WithUtils(),
	)
	if err != nil {
		t.Fatal(err)
	}
	server.RegisterHandler()
	return server
}

func TestNewServerRequiresRecognizer(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, err := NewServer(WithFiber(fiber.New()), WithLogger(logger), WithEnv(&Env{}))
	if err == nil || !strings.Contains(err.Error(), "recognizer") {
		t.Errorf("err = %v, want recognizer required", err)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{"healthy", nil, fiber.StatusOK},
		{"recognizer down", errors.New("connection refused"), fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &stubRecognizer{pingErr: tt.pingErr})

			resp, err := server.engine.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &stubRecognizer{})

	resp, err := server.engine.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRootAnalyzeAlias(t *testing.T) {
	server := newTestServer(t, &stubRecognizer{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	resp, err := server.engine.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusBadRequest || !strings.Contains(string(body), "No image uploaded") {
		t.Errorf("got %d %s, want 400 No image uploaded", resp.StatusCode, body)
	}
}
