package testbridge

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-testbridge/exitcodes"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// RuntimeError wraps anything that stopped a run from producing results:
// bad flags, an unreadable catalog, an engine that could not be started.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError reports a completed run whose status is fail. Message
// carries the run summary line.
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

// ExitCode maps an error returned by a run to the process exit code.
// Configuration and fatal errors count as runtime errors even when they
// were not wrapped in a RuntimeError.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case IsRuntimeError(err), types.IsFatalError(err), types.IsTestSetFailedError(err):
		return exitcodes.RuntimeErr
	default:
		return exitcodes.TestFailure
	}
}
