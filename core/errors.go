package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a single input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports rejected user input. API handlers unpack Fields
// into the error response body.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (ve ValidationError) Error() string {
	if ve.Err == nil {
		return ""
	}
	return ve.Err.Error()
}

// shutdown is an error that asks the running app to stop gracefully.
// Handlers return it when the service is in a state not worth serving from.
type shutdown struct {
	msg string
}

func NewShutdownError(msg string) error {
	return &shutdown{msg: msg}
}

func (s *shutdown) Error() string {
	return s.msg
}

// IsShutdown reports whether err, or its cause, requests a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
