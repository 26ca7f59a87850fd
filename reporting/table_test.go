package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTableFormatter(t *testing.T) {
	c := NewCollector("run-table")
	c.TestSetStarting(ReportEntry{Source: "Suite One", Name: "Test One"})
	c.TestSucceeded(ReportEntry{Source: "pkg/a", Name: "TestA", Elapsed: 1500 * time.Millisecond})
	c.BeforeConfigurationFailed(ReportEntry{Source: "pkg/b", Name: "init"})
	c.TestSetCompleted(ReportEntry{Source: "Suite One", Name: "Test One"})

	t.Run("with methods", func(t *testing.T) {
		out := NewTableFormatter("Results", true).Format(c.Result())
		assert.Contains(t, out, "Suite One / Test One")
		assert.Contains(t, out, "TestA")
		assert.Contains(t, out, "├── [before] pkg/b.init")
		assert.Contains(t, out, "└── TestA")
		assert.Contains(t, out, "TOTAL")
	})

	t.Run("without methods", func(t *testing.T) {
		out := NewTableFormatter("Results", false).Format(c.Result())
		assert.Contains(t, out, "Suite One / Test One")
		assert.NotContains(t, out, "TestA")
		assert.Contains(t, out, "└── [before] pkg/b.init")
	})
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
}
