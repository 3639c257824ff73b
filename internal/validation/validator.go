// Package validation runs go-playground/validator over request structs and
// turns failures into apperr validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"animehub/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names instead of Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v. The returned error wraps apperr.ErrValidation.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("invalid request: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: this field cannot be blank", field)
	case "min":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be >= %s", field, fe.Param())
	case "url", "uri":
		return fmt.Sprintf("%s: must be a valid URL", field)
	case "dive":
		return fmt.Sprintf("%s: invalid element", field)
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}
