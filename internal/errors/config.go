package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrInvalidConstraints is the sentinel wrapped by every ConfigError.
var ErrInvalidConstraints = stderrors.New("invalid scheduling constraints")

// ConfigError reports settings or constraints a recompute cannot run with.
// A recompute that hits one aborts and leaves the previous schedule in place.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrInvalidConstraints, e.Reason)
	}
	return fmt.Sprintf("%v: %s %s", ErrInvalidConstraints, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConstraints
}

func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return stderrors.As(err, &cfgErr)
}
