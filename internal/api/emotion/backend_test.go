package emotion

import (
	"EmotionAnalyzer/internal/entity"
	"errors"
	"reflect"
	"testing"
)

func TestParseBackends(t *testing.T) {
	got, err := ParseBackends(" MTCNN, retinaface,,mtcnn ,mediapipe")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []entity.DetectorBackend{entity.BackendMTCNN, entity.BackendRetinaFace, entity.BackendMediaPipe}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseBackendsRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"mtcnn,haar", "", " , "} {
		if _, err := ParseBackends(raw); !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("ParseBackends(%q): expected ErrUnknownBackend, got %v", raw, err)
		}
	}
}
