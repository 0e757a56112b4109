package sampark

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	phoneTag    = "phone"
	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)

	noop := func(ut.Translator) error { return nil }
	for _, tag := range []string{phoneTag, notBlankTag} {
		_ = validate.RegisterTranslation(tag, translator, noop, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case phoneTag:
		return "Please enter a valid 10-digit phone number."
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return ""
	}
}

func phoneValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// OTPRequest is the body of the OTP request call.
type OTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

// VerifyRequest is the body of the OTP validation call.
type VerifyRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	OTP         string `json:"otp" validate:"notblank"`
}

// ValidationError maps JSON field names to readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return strings.Join(msgs, "; ")
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}

// NormalizePhone strips everything but digits from s and requires exactly
// ten of them.
func NormalizePhone(s string) (string, error) {
	digits := stripNonDigits(s)
	if err := Validate(OTPRequest{PhoneNumber: digits}); err != nil {
		return "", err
	}
	return digits, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
