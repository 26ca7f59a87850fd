package testbridge

import (
	"github.com/ethereum-optimism/infra/op-testbridge/metrics"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
)

// MetricsReporter is responsible for reporting metrics from test results.
type MetricsReporter interface {
	ReportResults(result *reporting.RunResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults records the run totals. Per-method metrics are emitted while
// the run is in progress.
func (r *DefaultMetricsReporter) ReportResults(result *reporting.RunResult) {
	if result == nil {
		return
	}
	metrics.RecordRun(
		result.RunID,
		string(result.Status),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Duration,
	)
}
