package schema

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/isdelr/bill-tracker-be/internal/billing"
)

// At most eight integer digits, the range of the NUMERIC(10, 2) column.
var amountPattern = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

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
	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		return ValidAmount(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := billing.ParseDueDate(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schema: register %q: %v", tag, err))
	}
}

// ValidAmount reports whether s is a non-negative decimal with at most eight
// integer and two fractional digits.
func ValidAmount(s string) bool {
	return amountPattern.MatchString(s)
}

// FieldError is one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every failing field of a rejected request.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds an *Error for a single field.
func Invalid(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validate checks v against its struct tags. It returns nil or an *Error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label(fe.Field()) + " is required"
	case "amount":
		return "Amount must be a valid number with up to 2 decimal places"
	case "isodate":
		return label(fe.Field()) + " must be an ISO date (YYYY-MM-DD)"
	case "email":
		return "Please enter a valid email address"
	case "oneof":
		return label(fe.Field()) + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Param() == "1" {
			return label(fe.Field()) + " is required"
		}
		return fmt.Sprintf("%s must be at least %s characters", label(fe.Field()), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label(fe.Field()), fe.Param())
	case "hexcolor":
		return label(fe.Field()) + " must be a hex color"
	case "gt":
		return label(fe.Field()) + " must be a positive id"
	default:
		return label(fe.Field()) + " is invalid"
	}
}

// label turns a JSON field name like "dueDate" into "Due date".
func label(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
