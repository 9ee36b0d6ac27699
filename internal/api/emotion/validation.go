package emotion

import (
	"EmotionAnalyzer/internal/entity"

	"github.com/go-playground/validator/v10"
)

// RegisterValidations adds the "backend" and "backends" tags.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("backend", func(fl validator.FieldLevel) bool {
		return entity.DetectorBackend(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}

	return v.RegisterValidation("backends", func(fl validator.FieldLevel) bool {
		_, err := ParseBackends(fl.Field().String())
		return err == nil
	})
}
