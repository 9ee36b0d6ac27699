package config

import (
	"EmotionAnalyzer/internal/api/emotion"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	v := validator.New()
	if err := emotion.RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}
