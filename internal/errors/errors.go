package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types for the blog auth server
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	// Session errors
	ErrSessionInvalid = errors.New("session expired or invalid")

	// Input errors
	ErrMalformedInput = errors.New("malformed input")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")

	// General errors
	ErrNotFound = errors.New("not found")
)

// ValidationError carries every field-level message produced by a validation pass.
// It is returned, never panicked, and the messages are safe to show to the user.
type ValidationError struct {
	Messages []string
}

func (v *ValidationError) Error() string {
	return "validation failed: " + strings.Join(v.Messages, "; ")
}

// NewValidationError returns a *ValidationError holding a copy of msgs
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: append([]string(nil), msgs...)}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// ValidationMessages returns the messages of a *ValidationError in err's chain, or nil.
func ValidationMessages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	return nil
}
