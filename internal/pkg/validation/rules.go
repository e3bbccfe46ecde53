package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Phone numbers: digits, plus, dash and spaces, 10 to 15 characters
	PhonePattern = `^[0-9+\-\s]{10,15}$`

	// Password min length
	PasswordMinLength = 6

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
}

// fieldMessages maps "<jsonField>.<tag>" to the message shown next to the form field
var fieldMessages = map[string]string{
	"fullName.required":          "Name must be at least 2 characters",
	"fullName.min":               "Name must be at least 2 characters",
	"fullName.max":               "Name is too long",
	"fatherName.required":        "Father's name must be at least 2 characters",
	"fatherName.min":             "Father's name must be at least 2 characters",
	"fatherName.max":             "Name is too long",
	"dateOfBirth.required":       "Date of birth is required",
	"gender.required":            "Please select gender",
	"gender.oneof":               "Please select gender",
	"address.required":           "Please provide a complete address",
	"address.min":                "Please provide a complete address",
	"address.max":                "Address is too long",
	"phoneNumber.required":       "Please enter a valid phone number",
	"phoneNumber.phone":          "Please enter a valid phone number",
	"previousEducation.required": "Please specify previous education",
	"previousEducation.min":      "Please specify previous education",
	"previousEducation.max":      "Too long",
	"classApplyingFor.required":  "Please select a class",
	"classApplyingFor.classcode": "Please select a class",
	"academicYear.required":      "Please select academic year",
	"rollNumber.required":        "Roll number is required",
	"rollNumber.notblank":        "Roll number is required",
	"section.required":           "Section is required",
	"section.notblank":           "Section is required",
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom tags registered
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so messages line up with request fields
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Phone.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("classcode", func(fl validator.FieldLevel) bool {
			return models.IsValidClass(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		instance = v
	})
	return instance
}

// Struct validates s and converts failures into an *apperrors.ValidationError.
// The error message is the first failing field's message.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	first := ""
	for _, fe := range verrs {
		msg := FormatFieldError(fe)
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = msg
		}
		if first == "" {
			first = msg
		}
	}
	return apperrors.NewValidationError(first, fields)
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.Field()+"."+e.Tag()]; ok {
		return msg
	}

	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// StringValidation checks a single free-standing string value
type StringValidation struct {
	Value  string
	MinLen int
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{Value: value}
}

// WithMinLength sets minimum length in runes
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// Validate reports whether the value is non-empty and at least MinLen runes long
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return false
	}
	return utf8.RuneCountInString(v.Value) >= v.MinLen
}

// IsValidPassword reports whether password satisfies the minimum length rule
func IsValidPassword(password string) bool {
	return NewStringValidation(password).WithMinLength(PasswordMinLength).Validate()
}

// LooksLikeEmail is the permissive check used by mock login: the address only needs an "@"
func LooksLikeEmail(email string) bool {
	return strings.Contains(email, "@")
}
