package reporting

import (
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Configuration phases as reported in ConfigurationFailure
const (
	PhaseBefore = "before"
	PhaseAfter  = "after"
)

// ResultStats tracks counts for a container of results
type ResultStats struct {
	Total          int
	Passed         int
	Failed         int
	Skipped        int
	ConfigFailures int
	StartTime      time.Time
	EndTime        time.Time
}

// MethodResult is the outcome of one test method
type MethodResult struct {
	Class    string
	Method   string
	Groups   []string
	Status   types.TestStatus
	Duration time.Duration
	Message  string
	Error    error
	Output   string
}

// ConfigurationFailure is a failed before/after configuration method
type ConfigurationFailure struct {
	Phase string
	Entry ReportEntry
}

// TestSetResult groups the results of one suite/test node
type TestSetResult struct {
	Suite          string
	Test           string
	Status         types.TestStatus
	Duration       time.Duration
	Stats          ResultStats
	Methods        []*MethodResult
	ConfigFailures []ConfigurationFailure
	completed      bool
}

// RunResult is the aggregate of a whole run
type RunResult struct {
	RunID    string
	Status   types.TestStatus
	Duration time.Duration
	Stats    ResultStats
	Sets     []*TestSetResult
}

var _ RunListener = (*Collector)(nil)

// Collector aggregates listener events into a RunResult. Method events are
// attributed to the most recently started test set that has not completed.
type Collector struct {
	mu      sync.Mutex
	result  *RunResult
	current *TestSetResult
}

// NewCollector creates a collector for the given run
func NewCollector(runID string) *Collector {
	return &Collector{
		result: &RunResult{
			RunID:  runID,
			Status: types.TestStatusSkip,
			Stats:  ResultStats{StartTime: time.Now()},
		},
	}
}

func (c *Collector) TestSetStarting(entry ReportEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &TestSetResult{
		Suite: entry.Source,
		Test:  entry.Name,
		Stats: ResultStats{StartTime: time.Now()},
	}
	c.result.Sets = append(c.result.Sets, c.current)
}

func (c *Collector) TestSetCompleted(entry ReportEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.setFor(entry.Source)
	set.Stats.EndTime = time.Now()
	set.Duration = entry.Elapsed
	set.completed = true
	set.Status = determineSetStatus(set)
	c.current = nil
}

func (c *Collector) TestStarting(ReportEntry) {}

func (c *Collector) TestSucceeded(entry ReportEntry) {
	c.addMethod(entry, types.TestStatusPass)
}

func (c *Collector) TestFailed(entry ReportEntry) {
	c.addMethod(entry, types.TestStatusFail)
}

func (c *Collector) TestSkipped(entry ReportEntry) {
	c.addMethod(entry, types.TestStatusSkip)
}

func (c *Collector) BeforeConfigurationFailed(entry ReportEntry) {
	c.addConfigFailure(PhaseBefore, entry)
}

func (c *Collector) AfterConfigurationFailed(entry ReportEntry) {
	c.addConfigFailure(PhaseAfter, entry)
}

// Result finalizes statuses and returns the aggregate. It may be called more than once.
func (c *Collector) Result() *RunResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result.Stats.EndTime = time.Now()
	c.result.Duration = c.result.Stats.EndTime.Sub(c.result.Stats.StartTime)

	allSkipped := true
	anyFailed := false
	for _, set := range c.result.Sets {
		if !set.completed {
			set.Status = determineSetStatus(set)
		}
		if set.Status != types.TestStatusSkip {
			allSkipped = false
		}
		if set.Status == types.TestStatusFail {
			anyFailed = true
		}
	}
	c.result.Status = determineStatusFromFlags(allSkipped, anyFailed)
	return c.result
}

func (c *Collector) addMethod(entry ReportEntry, status types.TestStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.setFor("")
	set.Methods = append(set.Methods, &MethodResult{
		Class:    entry.Source,
		Method:   entry.Name,
		Groups:   entry.Groups,
		Status:   status,
		Duration: entry.Elapsed,
		Message:  entry.Message,
		Error:    entry.Cause,
		Output:   entry.Output,
	})
	updateStatusCounts(&set.Stats, status)
	updateStatusCounts(&c.result.Stats, status)
}

func (c *Collector) addConfigFailure(phase string, entry ReportEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.setFor("")
	set.ConfigFailures = append(set.ConfigFailures, ConfigurationFailure{Phase: phase, Entry: entry})
	set.Stats.ConfigFailures++
	c.result.Stats.ConfigFailures++
}

// setFor returns the open test set, creating an anonymous one for events
// that arrive outside of any set.
func (c *Collector) setFor(suite string) *TestSetResult {
	if c.current != nil {
		return c.current
	}
	c.current = &TestSetResult{
		Suite: suite,
		Stats: ResultStats{StartTime: time.Now()},
	}
	c.result.Sets = append(c.result.Sets, c.current)
	return c.current
}

func updateStatusCounts(stats *ResultStats, status types.TestStatus) {
	stats.Total++
	switch status {
	case types.TestStatusPass:
		stats.Passed++
	case types.TestStatusSkip:
		stats.Skipped++
	default:
		stats.Failed++
	}
}

func determineSetStatus(set *TestSetResult) types.TestStatus {
	if set.Stats.ConfigFailures > 0 {
		return types.TestStatusFail
	}
	allSkipped := true
	anyFailed := false
	for _, m := range set.Methods {
		if m.Status != types.TestStatusSkip {
			allSkipped = false
		}
		if m.Status == types.TestStatusFail {
			anyFailed = true
		}
	}
	return determineStatusFromFlags(allSkipped, anyFailed)
}

// determineStatusFromFlags returns a status based on test results.
// It prioritizes failures over skips - if any test failed, the overall status is fail.
func determineStatusFromFlags(allSkipped, anyFailed bool) types.TestStatus {
	if anyFailed {
		return types.TestStatusFail
	}
	if allSkipped {
		return types.TestStatusSkip
	}
	return types.TestStatusPass
}
