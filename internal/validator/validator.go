package validator

import (
	"reflect"
	"strings"
	"unicode"

	apperrors "github.com/shopsafety/quiz-service/internal/errors"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation with the custom rules the
// quiz service needs.
type Validator struct {
	structValidator *validator.Validate
}

// New creates the centralized validator instance.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// Validate validates struct tags and returns the failures as the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	// 4-digit student PIN
	validate.RegisterValidation("pin", validatePIN)

	// Report json field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validatePIN(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != 4 {
		return false
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
