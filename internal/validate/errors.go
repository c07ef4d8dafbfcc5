package validate

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrInvalid      = "E200" // constraint failed (generic)
	ErrRequired     = "E201" // value is required and must be non-empty
	ErrNotInEnum    = "E202" // value is not one of the enumerated options
	ErrEmptyName    = "E203" // model name is empty
	ErrDecodeFailed = "E204" // document could not be decoded
)

// Violation is a single violated constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// String renders the violation as "[code] field: message".
func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("[%s] %s", v.Code, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Field, v.Message)
}

// ValidationError reports every violated constraint of a rejected object.
// A rejected object is never partially applied.
type ValidationError struct {
	Object     string      `json:"object"` // "endpoint", "model", "field", ...
	Violations []Violation `json:"violations"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Object, strings.Join(parts, "; "))
}

// Prefix returns a copy whose field paths are nested under prefix.
func (e *ValidationError) Prefix(prefix string) *ValidationError {
	out := &ValidationError{Object: e.Object, Violations: make([]Violation, len(e.Violations))}
	for i, v := range e.Violations {
		if v.Field == "" {
			v.Field = prefix
		} else {
			v.Field = prefix + "." + v.Field
		}
		out.Violations[i] = v
	}
	return out
}

// Codes returns the violation codes in order.
func (e *ValidationError) Codes() []string {
	codes := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = v.Code
	}
	return codes
}

// AsValidationError unwraps err to a *ValidationError.
// Uses errors.As to handle wrapped errors.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}
