package patient

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a patient id is unknown.
var ErrNotFound = errors.New("patient not found")

// ErrorKind classifies what was wrong with a rejected field.
type ErrorKind string

const (
	KindMissing     ErrorKind = "missing"
	KindWrongType   ErrorKind = "wrong-type"
	KindOutOfRange  ErrorKind = "out-of-range"
	KindUnknownCode ErrorKind = "unknown-code"
	KindInvalid     ErrorKind = "invalid"
)

// ValidationError is the only error the parser returns. Field is the JSON
// path of the offending value, e.g. "discharge.date".
type ValidationError struct {
	Field   string
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func missing(field, label string) *ValidationError {
	return &ValidationError{Field: field, Kind: KindMissing, Message: "Missing " + label}
}

func wrongType(field, label, want string, got any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Kind:    KindWrongType,
		Message: fmt.Sprintf("Incorrect %s: expected %s, got %s", label, want, describe(got)),
	}
}

func outOfRange(field, label string, got any, allowed string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Kind:    KindOutOfRange,
		Message: fmt.Sprintf("Incorrect %s: %v is not one of %s", label, got, allowed),
	}
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Kind: KindInvalid, Message: message}
}

// describe names the JSON type of a decoded value.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
