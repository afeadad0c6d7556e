package infrastructures

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/safatanc/tourism-core/internal/app/errors"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

func (v *Validator) Validate(i interface{}) error {
	if i == nil {
		return errors.NewInvalidDataError("Invalid request body")
	}

	err := v.validate.Struct(i)
	if err != nil {
		return errors.NewInvalidDataError(describe(err))
	}
	return nil
}

// describe turns validator output into a stable field list, e.g.
// "invalid fields: Reason (required), Notes (max)".
func describe(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}
