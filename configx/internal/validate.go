package internal

import (
	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/argconf/core/errors"
)

// ValidateStruct validates a struct using validator tags.
func ValidateStruct(v *validator.Validate, target any) error {
	if v == nil {
		v = validator.New()
	}

	if err := v.Struct(target); err != nil {
		return errors.Build(errors.CodeInvalidArgument).
			WithOp("configx.Validate").
			WithMsg("validation failed").
			WithErr(err).
			Err()
	}

	return nil
}
