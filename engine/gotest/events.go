package gotest

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// TestEvent represents a test event from go test -json output
type TestEvent struct {
	Time       time.Time
	Action     string
	Package    string
	ImportPath string
	Test       string
	Elapsed    float64
	Output     string
}

func parseTestEvent(line []byte) (TestEvent, error) {
	var event TestEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return event, err
	}
	return event, nil
}

// setCounter tallies results for the test context shared by concurrent class runs
type setCounter struct {
	mu sync.Mutex
	tc *engine.TestContext
}

func (c *setCounter) add(status types.TestStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch status {
	case types.TestStatusPass:
		c.tc.Passed++
	case types.TestStatusSkip:
		c.tc.Skipped++
	default:
		c.tc.Failed++
	}
}

// classRun turns the event stream of one go test process into listener
// callbacks. Only top-level tests are reported; subtest output is folded
// into its parent. Package-level outcomes become configuration results.
type classRun struct {
	suite  string
	test   string
	class  string
	groups map[string][]string

	dispatcher *engine.Dispatcher
	counter    *setCounter

	started   time.Time
	pending   map[string]*engine.Result
	order     []string
	output    map[string]*tailBuffer
	pkgOutput *tailBuffer
	pkgAction string
	pkgEnd    time.Time

	testsRan    bool
	testsFailed bool
	buildFailed bool
}

func newClassRun(suite, test, class string, groups map[string][]string, d *engine.Dispatcher, counter *setCounter) *classRun {
	return &classRun{
		suite:      suite,
		test:       test,
		class:      class,
		groups:     groups,
		dispatcher: d,
		counter:    counter,
		started:    time.Now(),
		pending:    make(map[string]*engine.Result),
		output:     make(map[string]*tailBuffer),
		pkgOutput:  newTailBuffer(0),
	}
}

// handleLine feeds one line of go test -json output. Lines that are not
// JSON events are kept as package output.
func (c *classRun) handleLine(line []byte) {
	if len(strings.TrimSpace(string(line))) == 0 {
		return
	}
	event, err := parseTestEvent(line)
	if err != nil {
		c.pkgOutput.WriteString(string(line) + "\n")
		return
	}
	c.handle(event)
}

func (c *classRun) handle(ev TestEvent) {
	if ev.Test == "" {
		c.handlePackage(ev)
		return
	}

	name, _, isSubtest := strings.Cut(ev.Test, "/")
	if ev.Action == ActionOutput {
		c.outputFor(name).WriteString(ev.Output)
		return
	}
	if isSubtest {
		return
	}

	switch ev.Action {
	case ActionRun:
		c.start(name, ev.Time)
	case ActionPass:
		c.complete(name, types.TestStatusPass, ev.Time)
	case ActionFail:
		c.complete(name, types.TestStatusFail, ev.Time)
	case ActionSkip:
		c.complete(name, types.TestStatusSkip, ev.Time)
	}
}

func (c *classRun) handlePackage(ev TestEvent) {
	switch ev.Action {
	case ActionOutput, ActionBuildOutput:
		c.pkgOutput.WriteString(ev.Output)
	case ActionBuildFail:
		c.buildFailed = true
	case ActionStart:
		c.started = eventTime(ev.Time)
	case ActionPass, ActionFail, ActionSkip:
		c.pkgAction = ev.Action
		c.pkgEnd = eventTime(ev.Time)
	}
}

func (c *classRun) start(name string, at time.Time) *engine.Result {
	if r, ok := c.pending[name]; ok {
		return r
	}
	r := &engine.Result{
		Suite:  c.suite,
		Test:   c.test,
		Class:  c.class,
		Method: name,
		Groups: c.groups[name],
		Start:  eventTime(at),
	}
	c.pending[name] = r
	c.order = append(c.order, name)
	c.testsRan = true
	c.dispatcher.TestStart(r)
	return r
}

func (c *classRun) complete(name string, status types.TestStatus, at time.Time) {
	r := c.start(name, at)
	delete(c.pending, name)
	r.End = eventTime(at)
	r.Status = status
	r.Output = cleanOutput(c.outputFor(name).String())
	if status == types.TestStatusFail {
		c.testsFailed = true
		r.Err = failureError(r.Output, "test failed")
	}
	c.counter.add(status)
	c.dispatcher.TestDone(r)
}

// finish reports tests that never completed and the package outcome
func (c *classRun) finish(exited bool) {
	now := time.Now()
	for _, name := range c.order {
		r, ok := c.pending[name]
		if !ok {
			continue
		}
		delete(c.pending, name)
		r.End = now
		r.Status = types.TestStatusFail
		r.Output = cleanOutput(c.outputFor(name).String())
		r.Err = failureError(r.Output, "test did not complete")
		c.testsFailed = true
		c.counter.add(r.Status)
		c.dispatcher.TestDone(r)
	}

	end := c.pkgEnd
	if end.IsZero() {
		end = now
	}
	cfg := &engine.Result{
		Suite:  c.suite,
		Test:   c.test,
		Class:  c.class,
		Start:  c.started,
		End:    end,
		Output: cleanOutput(c.pkgOutput.String()),
	}

	packageFailed := c.pkgAction == ActionFail || c.buildFailed || (c.pkgAction == "" && exited)
	switch {
	case packageFailed && !c.testsRan:
		cfg.Phase = engine.PhaseBefore
		cfg.Status = types.TestStatusFail
		cfg.Err = failureError(cfg.Output, "package setup failed")
	case packageFailed && !c.testsFailed:
		cfg.Phase = engine.PhaseAfter
		cfg.Status = types.TestStatusFail
		cfg.Err = failureError(cfg.Output, "package teardown failed")
	case c.pkgAction == ActionSkip:
		cfg.Phase = engine.PhaseBefore
		cfg.Status = types.TestStatusSkip
	case packageFailed:
		// failing tests already explain the package failure
		return
	default:
		cfg.Phase = engine.PhaseAfter
		cfg.Status = types.TestStatusPass
	}
	c.dispatcher.ConfigurationDone(cfg)
}

func (c *classRun) outputFor(name string) *tailBuffer {
	b, ok := c.output[name]
	if !ok {
		b = newTailBuffer(0)
		c.output[name] = b
	}
	return b
}

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func cleanOutput(s string) string {
	return strings.TrimSpace(stripansi.Strip(s))
}

var frameworkPrefixes = []string{"=== RUN", "=== PAUSE", "=== CONT", "=== NAME", "--- FAIL", "--- PASS", "--- SKIP", "FAIL\t", "ok  \t"}

// failureError builds an error from output with the test framework's own
// status lines removed
func failureError(output, fallback string) error {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "FAIL" || trimmed == "PASS" || hasAnyPrefix(trimmed, frameworkPrefixes) {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return errors.New(fallback)
	}
	return errors.New(strings.Join(kept, "\n"))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
