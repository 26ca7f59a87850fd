package testbridge

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// ResultFormatter is responsible for formatting and displaying test results.
type ResultFormatter interface {
	FormatResults(result *reporting.RunResult) error
}

// ConsoleResultFormatter prints a results table followed by a one-line summary.
type ConsoleResultFormatter struct {
	logger      log.Logger
	out         io.Writer
	showMethods bool
}

// NewConsoleResultFormatter creates a formatter writing to out, or stdout if out is nil.
func NewConsoleResultFormatter(logger log.Logger, out io.Writer, showMethods bool) *ConsoleResultFormatter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleResultFormatter{
		logger:      logger,
		out:         out,
		showMethods: showMethods,
	}
}

// FormatResults formats and displays the test results.
func (f *ConsoleResultFormatter) FormatResults(result *reporting.RunResult) error {
	if result == nil {
		return fmt.Errorf("no result to format")
	}
	f.logger.Info("Printing results...")

	title := fmt.Sprintf("Test Results (%s)", result.RunID)
	table := reporting.NewTableFormatter(title, f.showMethods)
	if _, err := io.WriteString(f.out, table.Format(result)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(f.out, summaryLine(result))
	return err
}

func summaryLine(result *reporting.RunResult) string {
	return fmt.Sprintf("%s: %d passed, %d failed, %d skipped, %d configuration failures in %.1fs",
		getResultString(result.Status),
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		result.Stats.ConfigFailures,
		result.Duration.Seconds(),
	)
}

// getResultString returns a marker and label for a run status
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}
