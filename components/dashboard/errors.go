package dashboard

import (
	"errors"
	"fmt"
)

var (
	errMissingUserID  = errors.New("dashboard: viewer context missing user id")
	errMissingContext = errors.New("dashboard: dashboard context is required")
	errUnknownContext = errors.New("dashboard: dashboard context is not registered")
)

// ValidationError reports a structural problem with imported or submitted
// settings. The store state is left untouched whenever one is returned.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("dashboard: invalid settings: %s", e.Reason)
	}
	return fmt.Sprintf("dashboard: invalid settings field %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsBadRequest reports errors caused by an incomplete viewer or context.
func IsBadRequest(err error) bool {
	return errors.Is(err, errMissingUserID) || errors.Is(err, errMissingContext)
}

// IsNotFound reports errors caused by an unregistered dashboard context.
func IsNotFound(err error) bool {
	return errors.Is(err, errUnknownContext)
}

// IsForbidden reports errors caused by a module outside the viewer's role.
func IsForbidden(err error) bool {
	return errors.Is(err, errModuleUnavailable)
}
