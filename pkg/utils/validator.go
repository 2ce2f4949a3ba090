package utils

import (
	"fmt"

	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks the `validate` tags on v. Failures wrap errs.ErrClient.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrClient, err)
	}

	return nil
}
