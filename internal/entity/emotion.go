package entity

type DetectorBackend string

const (
	BackendOpenCV     DetectorBackend = "opencv"
	BackendSSD        DetectorBackend = "ssd"
	BackendDlib       DetectorBackend = "dlib"
	BackendMTCNN      DetectorBackend = "mtcnn"
	BackendFastMTCNN  DetectorBackend = "fastmtcnn"
	BackendRetinaFace DetectorBackend = "retinaface"
	BackendMediaPipe  DetectorBackend = "mediapipe"
	BackendYOLOv8     DetectorBackend = "yolov8"
	BackendYuNet      DetectorBackend = "yunet"
	BackendCenterFace DetectorBackend = "centerface"
	BackendSkip       DetectorBackend = "skip"
)

var DetectorBackends = []DetectorBackend{
	BackendOpenCV,
	BackendSSD,
	BackendDlib,
	BackendMTCNN,
	BackendFastMTCNN,
	BackendRetinaFace,
	BackendMediaPipe,
	BackendYOLOv8,
	BackendYuNet,
	BackendCenterFace,
	BackendSkip,
}

func (b DetectorBackend) Valid() bool {
	for _, known := range DetectorBackends {
		if b == known {
			return true
		}
	}
	return false
}

const (
	EmotionAngry    = "angry"
	EmotionDisgust  = "disgust"
	EmotionFear     = "fear"
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

// EmotionLabels are the classes the analyzer's emotion model reports.
var EmotionLabels = []string{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

func ValidEmotion(label string) bool {
	for _, known := range EmotionLabels {
		if label == known {
			return true
		}
	}
	return false
}

const ActionEmotion = "emotion"

// AnalyzeRequest is one call to the external recognition service.
type AnalyzeRequest struct {
	ImagePath        string          `json:"-"`
	DetectorBackend  DetectorBackend `json:"detector_backend"`
	EnforceDetection bool            `json:"enforce_detection"`
	Align            bool            `json:"align"`
	Actions          []string        `json:"actions"`
}

func NewAnalyzeRequest(path string, backend DetectorBackend, enforce bool) *AnalyzeRequest {
	return &AnalyzeRequest{
		ImagePath:        path,
		DetectorBackend:  backend,
		EnforceDetection: enforce,
		Align:            true,
		Actions:          []string{ActionEmotion},
	}
}
