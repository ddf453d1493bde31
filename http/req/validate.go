package req

import (
	"errors"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
)

// A Validator reports whether it holds one of its allowed values.
// trailrunner.Environment is one.
type Validator interface {
	Valid() error
}

type validator struct {
	valid *v10.Validate
}

// newValidator constructs a validator naming fields after their json or schema tags
// and understanding the "enum" rule.
func newValidator() validator {
	v := v10.New()
	v.RegisterValidation("enum", validateEnum)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "schema"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return ""
	})

	return validator{v}
}

// validate checks the fields on structPtr match the rules set by "validate" struct tags,
// translating each failure into a ValidationError.
func (v validator) validate(structPtr any) error {
	err := v.valid.Struct(structPtr)
	if err == nil {
		return nil
	}

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	var validateErrs ValidationErrors
	for _, ve := range errs {
		field := ve.Namespace()
		if ns := strings.SplitN(field, ".", 2); len(ns) == 2 {
			field = ns[1]
		}

		rule := ve.Tag()
		if ve.Param() != "" {
			rule += "=" + ve.Param()
		}
		rule += "; " + ve.Type().String()

		validateErrs = append(validateErrs, ValidationError{
			Field: field,
			Got:   ve.Value(),
			Rule:  rule,
		})
	}

	return validateErrs
}

// validateEnum passes a Validator, or a non-empty slice of them, holding only allowed values.
func validateEnum(fl v10.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return checkEnums(field)
	}

	vals := make([]reflect.Value, 0, field.Len())
	for i := 0; i < field.Len(); i++ {
		vals = append(vals, field.Index(i))
	}

	return checkEnums(vals...)
}

func checkEnums(items ...reflect.Value) bool {
	if len(items) == 0 {
		return false
	}

	for _, item := range items {
		enum, ok := item.Interface().(Validator)
		if !ok || enum.Valid() != nil {
			return false
		}
	}

	return true
}
