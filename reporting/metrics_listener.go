package reporting

import (
	"github.com/ethereum-optimism/infra/op-testbridge/metrics"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

var _ RunListener = (*MetricsListener)(nil)

// MetricsListener exports results as Prometheus metrics
type MetricsListener struct {
	runID string
}

func NewMetricsListener(runID string) *MetricsListener {
	return &MetricsListener{runID: runID}
}

func (m *MetricsListener) TestSetStarting(ReportEntry) {}

func (m *MetricsListener) TestSetCompleted(entry ReportEntry) {
	metrics.RecordTestSet(m.runID, entry.Source)
}

func (m *MetricsListener) TestStarting(ReportEntry) {}

func (m *MetricsListener) TestSucceeded(entry ReportEntry) {
	metrics.RecordTestResult(m.runID, entry.Source, types.TestStatusPass, entry.Elapsed)
}

func (m *MetricsListener) TestFailed(entry ReportEntry) {
	metrics.RecordTestResult(m.runID, entry.Source, types.TestStatusFail, entry.Elapsed)
}

func (m *MetricsListener) TestSkipped(entry ReportEntry) {
	metrics.RecordTestResult(m.runID, entry.Source, types.TestStatusSkip, entry.Elapsed)
}

func (m *MetricsListener) BeforeConfigurationFailed(ReportEntry) {
	metrics.RecordConfigurationFailure(m.runID, PhaseBefore)
}

func (m *MetricsListener) AfterConfigurationFailed(ReportEntry) {
	metrics.RecordConfigurationFailure(m.runID, PhaseAfter)
}
