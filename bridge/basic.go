package bridge

import (
	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
)

var _ Reporter = (*BasicReporter)(nil)

// BasicReporter forwards test set boundaries and method results
type BasicReporter struct {
	listener reporting.RunListener
}

func NewBasicReporter(listener reporting.RunListener) *BasicReporter {
	return &BasicReporter{listener: listener}
}

func (b *BasicReporter) OnStart(ctx *engine.TestContext) {
	b.listener.TestSetStarting(testSetEntry(ctx))
}

func (b *BasicReporter) OnFinish(ctx *engine.TestContext) {
	b.listener.TestSetCompleted(testSetEntry(ctx))
}

func (b *BasicReporter) OnTestStart(r *engine.Result) {
	b.listener.TestStarting(methodEntry(r))
}

func (b *BasicReporter) OnTestSuccess(r *engine.Result) {
	b.listener.TestSucceeded(methodEntry(r))
}

func (b *BasicReporter) OnTestFailure(r *engine.Result) {
	b.listener.TestFailed(methodEntry(r))
}

func (b *BasicReporter) OnTestSkipped(r *engine.Result) {
	b.listener.TestSkipped(methodEntry(r))
}
