package configx

import (
	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/argconf/configx/internal"
)

// ValidatorOption configures the validator.
type ValidatorOption func(*validator.Validate)

// NewValidator creates a new validator instance for Options.Validator.
func NewValidator(opts ...ValidatorOption) *validator.Validate {
	v := validator.New()
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateStruct validates a struct using validator tags. Failures carry
// the INVALID_ARGUMENT code and wrap validator.ValidationErrors.
func ValidateStruct(v *validator.Validate, target any) error {
	return internal.ValidateStruct(v, target)
}
