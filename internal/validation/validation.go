// Package validation wraps go-playground/validator with the domain formats
// used on tenant paperwork: Thai national id cards, phone numbers, and
// postal codes. These are hard server-side invariants, not UI hints.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic cross-field helpers for checks tags cannot express.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report violations under the json field name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// id card: exactly 13 digits
	_ = v.RegisterValidation("idcard", func(fl validator.FieldLevel) bool {
		return allDigits(fl.Field().String(), 13)
	})
	// phone: exactly 10 digits, leading 0
	_ = v.RegisterValidation("thphone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return allDigits(s, 10) && s[0] == '0'
	})
	// postal code: exactly 5 digits
	_ = v.RegisterValidation("postcode", func(fl validator.FieldLevel) bool {
		return allDigits(fl.Field().String(), 5)
	})
	return v
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Struct validates tagged fields and folds failures into a Violations map
// keyed by the json field name.
func Struct(s any, v Violations) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		v["_"] = "invalid_input"
		return
	}
	for _, fe := range verrs {
		v[fe.Field()] = reason(fe.Tag())
	}
}

func reason(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "must_be_email"
	case "idcard":
		return "must_be_13_digits"
	case "thphone":
		return "must_be_10_digits_starting_with_0"
	case "postcode":
		return "must_be_5_digits"
	case "gt", "gte":
		return "must_be_positive"
	default:
		return "invalid"
	}
}
