package types

import (
	"errors"
	"fmt"
)

// Error kinds, for use with errors.Is.
var (
	// ErrConfiguration marks a stored or proposed configuration that is
	// structurally or numerically inconsistent.
	ErrConfiguration = errors.New("configuration error")

	// ErrPrecondition marks a caller-supplied reference that is invalid
	// against live data.
	ErrPrecondition = errors.New("precondition failed")
)

// Precondition error codes.
const (
	ErrCodeWrongInput    = "wrong_input"
	ErrCodeUnknownEntity = "unknown_entity"
)

// ConfigurationError is returned by validators and upgrade logic.
type ConfigurationError struct {
	Msg string
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// Is makes errors.Is(err, ErrConfiguration) true.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// PrereqError is returned by entity accessors when a lookup fails.
type PrereqError struct {
	Msg  string
	Code string
}

// NewPrereqError formats a PrereqError with the given code.
func NewPrereqError(code, format string, args ...any) *PrereqError {
	return &PrereqError{Msg: fmt.Sprintf(format, args...), Code: code}
}

func (e *PrereqError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Msg, e.Code)
}

// Is makes errors.Is(err, ErrPrecondition) true.
func (e *PrereqError) Is(target error) bool {
	return target == ErrPrecondition
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// ErrorCode returns the code of a wrapped PrereqError, or "".
func ErrorCode(err error) string {
	var prereq *PrereqError
	if errors.As(err, &prereq) {
		return prereq.Code
	}
	return ""
}
