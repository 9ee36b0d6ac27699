package emotion

import (
	"EmotionAnalyzer/internal/entity"
	"fmt"
	"strings"
)

// ParseBackends splits a comma-separated backend list, dropping blanks and
// duplicates while keeping the caller's order.
func ParseBackends(raw string) ([]entity.DetectorBackend, error) {
	var backends []entity.DetectorBackend
	seen := make(map[entity.DetectorBackend]bool)

	for _, part := range strings.Split(raw, ",") {
		name := entity.DetectorBackend(strings.ToLower(strings.TrimSpace(part)))
		if name == "" || seen[name] {
			continue
		}
		if !name.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
		}
		seen[name] = true
		backends = append(backends, name)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("%w: empty backend list", ErrUnknownBackend)
	}

	return backends, nil
}
