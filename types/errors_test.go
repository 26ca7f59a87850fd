package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestSetFailedError(t *testing.T) {
	cause := errors.New("filter not registered")
	err := NewTestSetFailedError("building selectors", cause)

	assert.Equal(t, "test set failed: building selectors: filter not registered", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTestSetFailedError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsTestSetFailedError(cause))
	assert.False(t, IsTestSetFailedError(nil))
}

func TestTestSetFailedError_MessageEqualsCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewTestSetFailedError(cause.Error(), cause)
	assert.Equal(t, "test set failed: boom", err.Error())
}

func TestFatalError(t *testing.T) {
	cause := errors.New("constructor failed")
	err := NewFatalError("defect in reporter", cause)

	require.True(t, IsFatalError(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fatal: defect in reporter: constructor failed", err.Error())
	assert.Equal(t, "fatal: no cause", NewFatalError("no cause", nil).Error())
}
