package aurora

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/etnz/aurora/date"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldErrors maps a payload field (its JSON name) to a human message.
//
// It is the common shape for client-side validation failures and for the
// per-field errors returned by the backend on 422 responses.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(f))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Merge copies other into f, keeping existing messages.
func (f FieldErrors) Merge(other FieldErrors) FieldErrors {
	if f == nil {
		f = FieldErrors{}
	}
	for k, v := range other {
		if _, exists := f[k]; !exists {
			f[k] = v
		}
	}
	return f
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// decimals are compared as floats, dates as their ISO string.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(date.Date); ok {
			return d.String()
		}
		return nil
	}, date.Date{})

	v.RegisterValidation("asset_type", func(fl validator.FieldLevel) bool {
		return slices.Contains(AssetTypes, AssetType(fl.Field().String()))
	})
	v.RegisterValidation("classification", func(fl validator.FieldLevel) bool {
		return slices.Contains(Classifications, Classification(fl.Field().String()))
	})
	v.RegisterValidation("not_future", func(fl validator.FieldLevel) bool {
		d, err := date.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		return !d.After(date.Today())
	})
	return v
}

// Validate checks a payload (AssetCreate, TransactionCreate...) before it is
// sent, and returns FieldErrors with one message per invalid field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("cannot validate %T: %w", payload, err)
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

// message translates a validator failure into a sentence.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "asset_type":
		return "unknown asset type"
	case "classification":
		return "unknown classification"
	case "not_future":
		return "cannot be in the future"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
