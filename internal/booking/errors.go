package booking

import (
	"errors"
	"fmt"
)

var (
	ErrAvailabilityConflict = errors.New("selected slot is no longer available")
	ErrEnvelopeVersion      = errors.New("unsupported booking envelope version")
)

// ValidationError reports a malformed draft or envelope field.
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

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
