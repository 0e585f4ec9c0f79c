// Package validation wires go-playground/validator with English messages
// and JSON field names. Validator satisfies echo.Validator.
package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	notBlankTag = "notblank"
	mondayTag   = "monday"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() *Validator {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlank)
	_ = v.RegisterValidation(mondayTag, isMonday)

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, mondayTag} {
		_ = v.RegisterTranslation(tag, trans, noop, translateCustom)
	}
	return &Validator{validate: v, translator: trans}
}

// Validate runs struct validation and returns validator.ValidationErrors on
// failure.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Translate flattens validation errors into field -> message.
func (v *Validator) Translate(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case mondayTag:
		return fe.Field() + " must be a Monday in YYYY-MM-DD form"
	}
	return ""
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// isMonday accepts an empty string or a YYYY-MM-DD date falling on a Monday.
func isMonday(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if str == "" {
		return true
	}
	d, err := time.Parse(time.DateOnly, str)
	return err == nil && d.Weekday() == time.Monday
}
