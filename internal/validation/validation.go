// Package validation wraps go-playground/validator with JSON field names and a
// single error type handlers can turn into a notice.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("pastdate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := time.Parse("2006-01-02", s)
		return err == nil && !d.After(time.Now())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// FieldError describes one rejected field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Error is returned when a struct fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, describe(f))
	}
	return strings.Join(parts, "; ")
}

func describe(f FieldError) string {
	switch f.Rule {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", f.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", f.Field, f.Param)
	case "pastdate":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date not in the future", f.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f.Field)
	default:
		if f.Param != "" {
			return fmt.Sprintf("%s failed %s=%s", f.Field, f.Rule, f.Param)
		}
		return fmt.Sprintf("%s failed %s", f.Field, f.Rule)
	}
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// IsValidation reports whether err came from Struct.
func IsValidation(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}
