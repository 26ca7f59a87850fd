package bridge

import (
	"errors"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
)

var (
	_ Reporter                     = (*ExtendedReporter)(nil)
	_ engine.ConfigurationListener = (*ExtendedReporter)(nil)
)

// ExtendedReporter is a BasicReporter that also forwards configuration-method
// failures and skips
type ExtendedReporter struct {
	*BasicReporter
	runID string
}

func NewExtendedReporter(listener reporting.RunListener, runID string) (*ExtendedReporter, error) {
	if listener == nil {
		return nil, errors.New("listener is required")
	}
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	return &ExtendedReporter{
		BasicReporter: NewBasicReporter(listener),
		runID:         runID,
	}, nil
}

// RunID returns the run identity the reporter was built for
func (e *ExtendedReporter) RunID() string {
	return e.runID
}

func (e *ExtendedReporter) OnConfigurationSuccess(*engine.Result) {}

func (e *ExtendedReporter) OnConfigurationFailure(r *engine.Result) {
	if r.Phase == engine.PhaseAfter {
		e.listener.AfterConfigurationFailed(methodEntry(r))
		return
	}
	e.listener.BeforeConfigurationFailed(methodEntry(r))
}

func (e *ExtendedReporter) OnConfigurationSkip(r *engine.Result) {
	e.listener.TestSkipped(methodEntry(r))
}
