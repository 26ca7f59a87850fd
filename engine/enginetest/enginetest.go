// Package enginetest provides a scriptable in-memory engine for tests.
package enginetest

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

var (
	_ engine.Engine               = (*Engine)(nil)
	_ engine.ConfigurationEmitter = (*Engine)(nil)
)

// Script drives the callbacks emitted by Run
type Script func(ctx context.Context, e *Engine, d *engine.Dispatcher) error

// Engine records how it was configured and replays a script when run.
// Without a script it emits, for each test node, OnStart, a passing
// result per class and OnFinish.
type Engine struct {
	mu sync.Mutex

	settings   engine.Settings
	dispatcher *engine.Dispatcher

	Script       Script
	ConfigEvents bool
	RunErr       error

	VerboseCalls  []int
	OutputDir     string
	SourcePath    string
	SourcePathSet bool
	Suites        []*plan.Suite
	SuiteFiles    []string
	Runs          int
	// Calls lists method names in the order they were invoked
	Calls []string
}

// New creates a fake engine. With configEvents it reports the extended capability.
func New(configEvents bool) *Engine {
	return &Engine{
		ConfigEvents: configEvents,
		dispatcher:   engine.NewDispatcher(configEvents),
	}
}

func (e *Engine) record(call string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, call)
}

func (e *Engine) EmitsConfigurationEvents() bool {
	return e.ConfigEvents
}

func (e *Engine) Settings() *engine.Settings {
	e.record("Settings")
	return &e.settings
}

func (e *Engine) SetVerbose(level int) {
	e.record("SetVerbose")
	e.settings.Verbose = level
	e.VerboseCalls = append(e.VerboseCalls, level)
}

func (e *Engine) AddListener(l engine.Listener) {
	e.record("AddListener")
	e.dispatcher.Add(l)
}

// Listeners returns how many listeners were attached
func (e *Engine) Listeners() int {
	return e.dispatcher.Len()
}

func (e *Engine) SetOutputDirectory(dir string) {
	e.record("SetOutputDirectory")
	e.OutputDir = dir
}

func (e *Engine) SetSourcePath(p string) {
	e.record("SetSourcePath")
	e.SourcePath = p
	e.SourcePathSet = true
}

func (e *Engine) SetSuites(suites []*plan.Suite) {
	e.record("SetSuites")
	e.Suites = suites
}

func (e *Engine) SetSuiteFiles(paths []string) {
	e.record("SetSuiteFiles")
	e.SuiteFiles = paths
}

func (e *Engine) Run(ctx context.Context) error {
	e.record("Run")
	e.Runs++
	if e.RunErr != nil {
		return e.RunErr
	}
	script := e.Script
	if script == nil {
		script = PassAll
	}
	return script(ctx, e, e.dispatcher)
}

// PassAll emits a passing result for every class of every test node
func PassAll(_ context.Context, e *Engine, d *engine.Dispatcher) error {
	for _, suite := range e.Suites {
		for _, test := range suite.Tests {
			tc := &engine.TestContext{Suite: suite.Name, Test: test.Name, Start: time.Now()}
			d.Start(tc)
			for _, class := range test.Classes {
				r := Result(suite.Name, test.Name, class, "Test"+path.Base(class), types.TestStatusPass)
				d.TestStart(r)
				d.TestDone(r)
				tc.Passed++
			}
			tc.End = time.Now()
			d.Finish(tc)
		}
	}
	return nil
}

// Result builds a completed result
func Result(suite, test, class, method string, status types.TestStatus) *engine.Result {
	now := time.Now()
	return &engine.Result{
		Suite:  suite,
		Test:   test,
		Class:  class,
		Method: method,
		Status: status,
		Start:  now,
		End:    now,
	}
}
