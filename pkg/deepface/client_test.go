package deepface

import (
	"EmotionAnalyzer/internal/api/emotion"
	"EmotionAnalyzer/internal/entity"
	"EmotionAnalyzer/pkg/normalize"
	"context"
	stdjson "encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

const happyFace = `{"results": [{"dominant_emotion": "happy", "emotion": {"happy": 92.5, "sad": 0.1}, "region": {"x": 10, "y": 20, "w": 30, "h": 40}, "face_confidence": 0.91}]}`

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "face.png")
	if err := os.WriteFile(path, pngHeader, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeSendsDataURI(t *testing.T) {
	var got AnalyzePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := stdjson.Unmarshal(body, &got); err != nil {
			t.Errorf("Invalid payload: %v", err)
		}
		io.WriteString(w, happyFace)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, srv.Client(), false, nil)
	if err != nil {
		t.Fatal(err)
	}

	req := entity.NewAnalyzeRequest(writeImage(t), entity.BackendMTCNN, false)
	result, err := client.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(got.Img, "data:image/png;base64,") {
		t.Errorf("Expected data URI, got %.40s", got.Img)
	}
	if got.DetectorBackend != "mtcnn" || !got.Align || got.EnforceDetection {
		t.Errorf("Unexpected payload options: %+v", got)
	}
	if !reflect.DeepEqual(got.Actions, []string{"emotion"}) {
		t.Errorf("Expected emotion action, got %v", got.Actions)
	}

	faces := result.([]any)
	score := faces[0].(map[string]any)["emotion"].(map[string]any)["happy"]
	if _, ok := score.(stdjson.Number); !ok {
		t.Errorf("Expected json.Number leaf before normalization, got %T", score)
	}

	normalized := normalize.Normalize(result).([]any)[0].(map[string]any)
	if normalized["emotion"].(map[string]any)["happy"] != 92.5 {
		t.Errorf("Expected 92.5 after normalization, got %v", normalized["emotion"])
	}
	if normalized["region"].(map[string]any)["w"] != int64(30) {
		t.Errorf("Expected int64 region width, got %#v", normalized["region"])
	}
}

func TestAnalyzeSharedUploadsSendsPath(t *testing.T) {
	var got AnalyzePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stdjson.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"results": []}`)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, nil, true, nil)
	path := "/shared/uploads/abc.jpg"

	result, err := client.Analyze(context.Background(), entity.NewAnalyzeRequest(path, entity.BackendRetinaFace, true))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got.Img != path {
		t.Errorf("Expected path %s, got %s", path, got.Img)
	}
	if faces, ok := result.([]any); !ok || len(faces) != 0 {
		t.Errorf("Expected empty face list, got %#v", result)
	}
}

func TestAnalyzeMapsFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"no face", http.StatusBadRequest, `{"exception": "Face could not be detected in numpy array."}`, emotion.ErrNoFaceDetected},
		{"bad image", http.StatusBadRequest, `{"error": "cannot identify image file"}`, emotion.ErrAnalysisFailed},
		{"upstream crash", http.StatusInternalServerError, `<html>oops</html>`, emotion.ErrRecognizerUnavailable},
		{"unexpected status", http.StatusNotFound, `not here`, emotion.ErrAnalysisFailed},
		{"error in 200", http.StatusOK, `{"error": "model not loaded"}`, emotion.ErrAnalysisFailed},
		{"garbage 200", http.StatusOK, `{"results": `, emotion.ErrAnalysisFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			client, _ := NewClient(srv.URL, nil, true, nil)
			_, err := client.Analyze(context.Background(), entity.NewAnalyzeRequest("x.jpg", entity.BackendSSD, true))
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAnalyzeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, _ := NewClient(url, nil, true, nil)
	_, err := client.Analyze(context.Background(), entity.NewAnalyzeRequest("x.jpg", entity.BackendSSD, false))
	if !errors.Is(err, emotion.ErrRecognizerUnavailable) {
		t.Errorf("Expected ErrRecognizerUnavailable, got %v", err)
	}
	if err := client.Ping(context.Background()); !errors.Is(err, emotion.ErrRecognizerUnavailable) {
		t.Errorf("Expected ping to fail with ErrRecognizerUnavailable, got %v", err)
	}
}

func TestAnalyzeHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, _ := NewClient(srv.URL, nil, true, nil)
	_, err := client.Analyze(ctx, entity.NewAnalyzeRequest("x.jpg", entity.BackendSSD, false))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost", "://bad"} {
		if _, err := NewClient(raw, nil, false, nil); err == nil {
			t.Errorf("NewClient(%q): expected error", raw)
		}
	}
}

func TestNewPayloadMissingFile(t *testing.T) {
	_, err := NewPayload(entity.NewAnalyzeRequest(filepath.Join(t.TempDir(), "gone.jpg"), entity.BackendSSD, false), false)
	if err == nil {
		t.Error("Expected error for missing transient file")
	}
}
