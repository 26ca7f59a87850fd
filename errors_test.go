package testbridge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/op-testbridge/exitcodes"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcodes.Success},
		{"test failure", NewTestFailureError("1 failed"), exitcodes.TestFailure},
		{"runtime", NewRuntimeError(errors.New("no catalog")), exitcodes.RuntimeErr},
		{"wrapped runtime", fmt.Errorf("start: %w", NewRuntimeError(errors.New("x"))), exitcodes.RuntimeErr},
		{"fatal", types.NewFatalError("unknown configurator", nil), exitcodes.RuntimeErr},
		{"test set failed", types.NewTestSetFailedError("bad option", nil), exitcodes.RuntimeErr},
		{"unclassified", errors.New("boom"), exitcodes.TestFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	inner := errors.New("disk full")
	rt := NewRuntimeError(inner)
	assert.True(t, IsRuntimeError(rt))
	assert.ErrorIs(t, rt, inner)
	assert.False(t, IsRuntimeError(inner))
	assert.False(t, IsRuntimeError(nil))

	tf := NewTestFailureError("2 failed")
	assert.True(t, IsTestFailureError(tf))
	assert.Equal(t, "test failure: 2 failed", tf.Error())
	assert.False(t, IsTestFailureError(rt))
}
