package testbridge

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

func TestConsoleResultFormatter(t *testing.T) {
	collector := reporting.NewCollector("fmt-run")
	passingRun(collector)
	result := collector.Result()
	result.Duration = 1500 * time.Millisecond

	var out bytes.Buffer
	f := NewConsoleResultFormatter(testLogger(), &out, true)
	require.NoError(t, f.FormatResults(result))

	text := out.String()
	assert.Contains(t, text, "Test Results (fmt-run)")
	assert.Contains(t, text, "TestA")
	assert.Contains(t, text, "✗ fail: 1 passed, 1 failed, 0 skipped, 0 configuration failures in 1.5s")
}

func TestConsoleResultFormatter_NilResult(t *testing.T) {
	f := NewConsoleResultFormatter(testLogger(), &bytes.Buffer{}, false)
	require.Error(t, f.FormatResults(nil))
}

func TestGetResultString(t *testing.T) {
	assert.Equal(t, "✓ pass", getResultString(types.TestStatusPass))
	assert.Equal(t, "- skip", getResultString(types.TestStatusSkip))
	assert.Equal(t, "✗ fail", getResultString(types.TestStatusFail))
	assert.Equal(t, "✗ fail", getResultString(types.TestStatusError))
}
