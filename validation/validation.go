// Package validation collects field level violations for write requests.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Violations maps a field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// MoneyScale is the number of decimal places money columns store.
const MoneyScale = 2

func PositiveAmount(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
		return
	}
	precision(field, val, v)
}

func NonNegativeAmount(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
		return
	}
	precision(field, val, v)
}

// precision rejects amounts the decimal(14,2) columns would round.
func precision(field string, val decimal.Decimal, v Violations) {
	if !val.Equal(val.Round(MoneyScale)) {
		v[field] = "too_precise"
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// codes translates validator tags into the violation codes used by the API.
var codes = map[string]string{
	"required": "required",
	"email":    "invalid_email",
	"max":      "too_long",
	"min":      "too_short",
	"gte":      "out_of_range",
	"lte":      "out_of_range",
	"oneof":    "invalid_choice",
}

// Struct runs the `validate` tags of s and merges failures into v, keyed by
// JSON field name. Fields that already carry a violation keep it.
func Struct(s any, v Violations) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v["_"] = "invalid"
		return
	}
	for _, fe := range fieldErrs {
		if _, ok := v[fe.Field()]; ok {
			continue
		}
		code, ok := codes[fe.Tag()]
		if !ok {
			code = "invalid"
		}
		v[fe.Field()] = code
	}
}
