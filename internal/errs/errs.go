// Package errs defines the error taxonomy shared by the decoding core:
// validation failures, use-before-initialization, and opaque engine faults.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a configuration or decode operation is
// attempted before a registry has been successfully initialized.
var ErrNotInitialized = errors.New("SDK not initialized")

// ValidationError reports malformed caller input. Operations returning it
// reject the whole call and leave prior state untouched.
type ValidationError struct {
	Op     string // operation that rejected the input, e.g. "registry.SetEnabledDecoders"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return e.Op + ": " + e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(op, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// EngineError surfaces a failure from the external decode engine. The message
// is passed through verbatim; the underlying error, when available, is kept
// for errors.Is/As inspection.
type EngineError struct {
	Msg string
	Err error
}

func (e *EngineError) Error() string { return e.Msg }

func (e *EngineError) Unwrap() error { return e.Err }

// FromEngine wraps an engine failure. A nil err yields nil.
func FromEngine(err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Msg: err.Error(), Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEngine reports whether err is (or wraps) an EngineError.
func IsEngine(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}

// IsNotInitialized reports whether err is the use-before-init sentinel.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}
