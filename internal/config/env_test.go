package config

import (
	"EmotionAnalyzer/internal/entity"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	env, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}

	if env.AppPort != "3000" {
		t.Errorf("AppPort = %q, want 3000", env.AppPort)
	}
	if env.AnalyzeTimeout != 60*time.Second {
		t.Errorf("AnalyzeTimeout = %v, want 60s", env.AnalyzeTimeout)
	}
	if env.RecognizerTransport != TransportHTTP {
		t.Errorf("RecognizerTransport = %q, want http", env.RecognizerTransport)
	}

	want := []entity.DetectorBackend{entity.BackendMTCNN, entity.BackendRetinaFace, entity.BackendMediaPipe}
	if got := env.Backends(); !reflect.DeepEqual(got, want) {
		t.Errorf("Backends() = %v, want %v", got, want)
	}
}

func TestLoadEnvFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=8080\nDEFAULT_BACKENDS=opencv,ssd\nANALYZE_TIMEOUT=5s\nMAX_UPLOAD_SIZE=1024\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		for _, k := range []string{"APP_PORT", "DEFAULT_BACKENDS", "ANALYZE_TIMEOUT", "MAX_UPLOAD_SIZE"} {
			os.Unsetenv(k)
		}
	})

	env, err := LoadEnv(path)
	if err != nil {
		t.Fatal(err)
	}

	if env.AppPort != "8080" || env.AnalyzeTimeout != 5*time.Second || env.MaxUploadSize != 1024 {
		t.Errorf("env = %+v", env)
	}
	if got := env.Backends(); !reflect.DeepEqual(got, []entity.DetectorBackend{entity.BackendOpenCV, entity.BackendSSD}) {
		t.Errorf("Backends() = %v", got)
	}
}

func TestLoadEnvRejects(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown backend", map[string]string{"DEFAULT_BACKENDS": "mtcnn,haar"}, "DEFAULT_BACKENDS"},
		{"unknown transport", map[string]string{"RECOGNIZER_TRANSPORT": "grpc"}, "RECOGNIZER_TRANSPORT"},
		{"ws without url", map[string]string{"RECOGNIZER_TRANSPORT": "ws"}, "AI_EMOTION_WS_URL"},
		{"bad timeout", map[string]string{"ANALYZE_TIMEOUT": "soon"}, "ANALYZE_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}
