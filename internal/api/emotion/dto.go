package emotion

type AnalyzeRequest struct {
	Backends string `form:"backends" query:"backends" validate:"omitempty,backends"`
}

type AnalyzeFacesRequest struct {
	DetectorBackend  string `form:"detector_backend" query:"detector_backend" validate:"omitempty,backend"`
	EnforceDetection bool   `form:"enforce_detection" query:"enforce_detection"`
}

// BackendEmotions maps a detector backend to the dominant emotion of the
// first face it found.
type BackendEmotions map[string]string

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
