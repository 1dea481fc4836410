package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

type fieldValuer interface {
	validationValue() any
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Decimals validate as numbers so gte/gt/lte apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// Patch fields validate as their inner value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		f, ok := field.Interface().(fieldValuer)
		if !ok {
			return nil
		}
		switch x := f.validationValue().(type) {
		case decimal.Decimal:
			return x.InexactFloat64()
		default:
			return x
		}
	}, Field[string]{}, Field[int]{}, Field[bool]{}, Field[decimal.Decimal]{})

	return v
}

// Validate checks s against its validate tags. Failures are returned as a
// *DomainError with code ErrCodeValidation and one FieldError per rule.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewDomainError(ErrCodeValidation, err.Error())
	}

	details := make([]FieldError, len(verrs))
	for i, e := range verrs {
		details[i] = FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: validationMessage(e),
		}
	}
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: details[0].Message,
		Details: details,
	}
}

// NewValidationError reports a single failed rule on field.
func NewValidationError(field, tag, message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: []FieldError{{Field: field, Tag: tag, Message: message}},
	}
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "len":
		return e.Field() + " must have length " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "numeric":
		return e.Field() + " must contain only digits"
	default:
		return e.Field() + " is invalid"
	}
}
