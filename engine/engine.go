// Package engine defines the contract of the external test-execution engine
// driven by the bridge, and the native result callbacks it emits.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Parallel modes understood by engines
const (
	ParallelNone    = "none"
	ParallelMethods = "methods"
	ParallelClasses = "classes"
)

// ValidateParallelMode returns an error for modes engines do not understand.
// The empty string means ParallelNone.
func ValidateParallelMode(mode string) error {
	switch mode {
	case "", ParallelNone, ParallelMethods, ParallelClasses:
		return nil
	default:
		return fmt.Errorf("invalid parallel mode %q, must be one of: %s, %s, %s",
			mode, ParallelNone, ParallelMethods, ParallelClasses)
	}
}

// Settings holds engine-scoped configuration
type Settings struct {
	Verbose     int
	ThreadCount int
	Timeout     time.Duration
	Tags        []string
	Race        bool
	Short       bool
	FailFast    bool
	// Selectors are added in front of the selectors of every test loaded
	// from suite files. Plans handed over with SetSuites carry their own.
	Selectors []selector.Selector
}

// Engine is a synchronous test-execution engine
type Engine interface {
	// Settings returns the engine-scoped settings for configurators to edit
	Settings() *Settings
	SetVerbose(level int)
	AddListener(l Listener)
	SetOutputDirectory(dir string)
	SetSourcePath(path string)
	// SetSuites hands a built plan to the engine
	SetSuites(suites []*plan.Suite)
	// SetSuiteFiles hands externally authored suite descriptors to the engine
	SetSuiteFiles(paths []string)
	// Run blocks until every suite has completed. Per-test failures are
	// reported to listeners; only invocation-level faults are returned.
	Run(ctx context.Context) error
}

// ConfigurationEmitter is implemented by engines able to report
// configuration-method results in addition to test results
type ConfigurationEmitter interface {
	EmitsConfigurationEvents() bool
}

// Phase tells which side of the tests a configuration method ran on
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// Result describes the execution of one method or configuration method
type Result struct {
	Suite  string
	Test   string
	Class  string
	Method string
	Groups []string
	Phase  Phase
	Status types.TestStatus
	Start  time.Time
	End    time.Time
	Err    error
	Output string
}

// Elapsed returns the time between start and end, or zero if either is unknown
func (r *Result) Elapsed() time.Duration {
	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start)
}

// TestContext describes a test node while it runs
type TestContext struct {
	Suite   string
	Test    string
	Start   time.Time
	End     time.Time
	Passed  int
	Failed  int
	Skipped int
}

// Listener receives the basic result callbacks
type Listener interface {
	OnStart(ctx *TestContext)
	OnFinish(ctx *TestContext)
	OnTestStart(r *Result)
	OnTestSuccess(r *Result)
	OnTestFailure(r *Result)
	OnTestSkipped(r *Result)
}

// ConfigurationListener receives configuration-method callbacks
type ConfigurationListener interface {
	OnConfigurationSuccess(r *Result)
	OnConfigurationFailure(r *Result)
	OnConfigurationSkip(r *Result)
}
