package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/btlive/pkg/errors"
)

// validate is a singleton validator instance
var validate = validator.New()

// formatValidationError reports the first failed field in a readable form.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate")
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return errors.New(errors.ErrCodeInvalidConfig, "%s: field is required", field)
		case "min", "gte":
			return errors.New(errors.ErrCodeInvalidConfig, "%s: must be at least %s", field, e.Param())
		case "max":
			return errors.New(errors.ErrCodeInvalidConfig, "%s: must not exceed %s", field, e.Param())
		case "oneof":
			return errors.New(errors.ErrCodeInvalidConfig, "%s: must be one of %s", field, e.Param())
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "%s: invalid %s (%v)", field, e.Tag(), e.Value())
		}
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid configuration")
}
