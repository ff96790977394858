package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BrowserActions lists the action names accepted by BrowserActionRequest.
var BrowserActions = []string{
	"navigate", "click", "type", "scroll", "screenshot",
	"back", "forward", "reload", "evaluate",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names, not Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError is a request shape violation on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks v against its validate tags. It returns a
// *ValidationError describing the first failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "is required"}
	case "oneof":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))}
	case "max":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("failed %s validation", fe.Tag())}
	}
}

// IsValidAction reports whether name is an accepted browser action.
func IsValidAction(name string) bool {
	for _, a := range BrowserActions {
		if a == name {
			return true
		}
	}
	return false
}
