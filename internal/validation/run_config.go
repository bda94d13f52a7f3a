// Package validation enforces the caller-side contract of the analysis
// pipeline before it runs: the core itself assumes a valid configuration.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	apierrors "qpcrcli/internal/errors"
	"qpcrcli/internal/qpcr"
)

var validate = validator.New()

// RunConfig validates an analysis configuration: replica count at least 1,
// a housekeeper gene name, at least one sample, and controls that form a
// subset of the samples. Returns a validation AppError describing the first
// violation.
func RunConfig(cfg qpcr.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			return apierrors.NewValidationError(describeFieldError(fieldErrs[0]))
		}
		return apierrors.NewValidationError(err.Error())
	}

	for _, control := range cfg.Controls {
		if !lo.Contains(cfg.Samples, control) {
			return apierrors.NewValidationError(
				fmt.Sprintf("control %q is not one of the configured samples", control),
			).WithContext("control", control)
		}
	}

	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		*target = fieldErrs
		return true
	}
	return false
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
