package student

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError pins a validation failure to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the per-field failure list of a registration form.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string { return "validation failed" }

var (
	validate  = newValidator()
	aadhaarRe = regexp.MustCompile(`^[0-9]{12}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Aadhaar numbers are 12 digits, spaces tolerated.
	_ = v.RegisterValidation("aadhaar", func(fl validator.FieldLevel) bool {
		digits := strings.ReplaceAll(fl.Field().String(), " ", "")
		return aadhaarRe.MatchString(digits)
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks a registration form and reports every failing field.
func Validate(in RegistrationInput) ValidationErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Field: "_", Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "len", "numeric":
		switch fe.Field() {
		case "pincode":
			return "pincode must be 6 digits"
		case "mobile":
			return "mobile must be 10 digits"
		}
		return fe.Field() + " has the wrong length"
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case "aadhaar":
		return "aadhaar number must be 12 digits"
	}
	return fe.Field() + " is invalid"
}
