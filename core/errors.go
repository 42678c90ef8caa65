package core

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

const unknownErrText = "unknown error"

// ErrorMessage coerces an arbitrary error payload into a human-readable message.
// Upstream services report failures as plain strings, error values or loose
// objects; all three must come out as text without a marshalling failure
// taking the caller down.
func ErrorMessage(v interface{}) (msg string) {
	defer func() {
		if recover() != nil {
			msg = unknownErrText
		}
	}()

	switch t := v.(type) {
	case nil:
		return unknownErrText
	case string:
		if t == "" {
			return unknownErrText
		}
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
