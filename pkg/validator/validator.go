package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) ([]ValidationError, bool) {
	if err := v.validate.Struct(i); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errs := make([]ValidationError, 0, len(validationErrors))

		for _, ve := range validationErrors {
			var message string
			switch ve.Tag() {
			case "required":
				message = fmt.Sprintf("%s is required", ve.Field())
			case "min":
				message = fmt.Sprintf("%s must be at least %s", ve.Field(), ve.Param())
			case "max":
				message = fmt.Sprintf("%s must not exceed %s", ve.Field(), ve.Param())
			case "oneof":
				message = fmt.Sprintf("%s must be one of: %s", ve.Field(), ve.Param())
			default:
				message = fmt.Sprintf("%s is invalid", ve.Field())
			}

			errs = append(errs, ValidationError{
				Field:   ve.Field(),
				Code:    strings.ToUpper(ve.Tag()),
				Message: message,
			})
		}

		return errs, false
	}

	return nil, true
}
