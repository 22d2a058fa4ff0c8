package documents

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. decimal.Decimal and id.ID fields are
// exposed to tag rules as float64 and string.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if u, ok := field.Interface().(id.ID); ok && !id.IsNil(u) {
				return u.String()
			}
			return ""
		}, id.ID{})
		validate = v
	})
	return validate
}

// ValidateCart rejects an empty cart and malformed entries before any
// transaction begins.
func ValidateCart(lines []CartLine) error {
	if len(lines) == 0 {
		return apperror.NewValidation("cart is empty").WithDetail("field", "items")
	}
	for i := range lines {
		if err := Validator().Struct(lines[i]); err != nil {
			return lineError(i, err)
		}
	}
	return nil
}

// ValidateLines is ValidateCart for already priced lines.
func ValidateLines(lines []LineItem) error {
	if len(lines) == 0 {
		return apperror.NewValidation("cart is empty").WithDetail("field", "items")
	}
	for i := range lines {
		if err := Validator().Struct(lines[i]); err != nil {
			return lineError(i, err)
		}
	}
	return nil
}

func lineError(index int, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.NewValidation(err.Error())
	}
	fe := fieldErrs[0]
	return apperror.NewValidation("invalid item in cart").
		WithDetail("line", index+1).
		WithDetail("field", fe.Field()).
		WithDetail("rule", fe.Tag())
}
