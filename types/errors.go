package types

import (
	"errors"
	"fmt"
)

// TestSetFailedError is raised for configuration and selector construction
// problems. The run does not proceed past the step that raised it.
type TestSetFailedError struct {
	Message string
	Cause   error
}

func (e *TestSetFailedError) Error() string {
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return fmt.Sprintf("test set failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("test set failed: %s", e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TestSetFailedError) Unwrap() error {
	return e.Cause
}

// NewTestSetFailedError creates a TestSetFailedError with the given message and cause
func NewTestSetFailedError(message string, cause error) *TestSetFailedError {
	return &TestSetFailedError{Message: message, Cause: cause}
}

// IsTestSetFailedError checks if the error is or wraps a TestSetFailedError
func IsTestSetFailedError(err error) bool {
	var tsErr *TestSetFailedError
	return err != nil && errors.As(err, &tsErr)
}

// FatalError signals a defect or an unusable configuration that must not be
// recovered from: an unknown configurator strategy, or a result reporter that
// is present but cannot be constructed.
type FatalError struct {
	Message string
	Cause   error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fatal: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("fatal: %s", e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FatalError) Unwrap() error {
	return e.Cause
}

// NewFatalError creates a FatalError
func NewFatalError(message string, cause error) *FatalError {
	return &FatalError{Message: message, Cause: cause}
}

// IsFatalError checks if the error is or wraps a FatalError
func IsFatalError(err error) bool {
	var fatalErr *FatalError
	return err != nil && errors.As(err, &fatalErr)
}
