// Package reporting defines the host-side listener protocol that receives
// translated engine results, along with listeners that collect, log and
// export them.
package reporting

import (
	"fmt"
	"time"
)

// ReportEntry is the host's neutral description of one reported event.
// For test set events Source is the suite and Name the test; for method
// events Source is the class and Name the method.
type ReportEntry struct {
	Source  string
	Name    string
	Groups  []string
	Elapsed time.Duration
	Message string
	Cause   error
	Output  string
}

func (e ReportEntry) String() string {
	if e.Source == "" {
		return e.Name
	}
	return fmt.Sprintf("%s.%s", e.Source, e.Name)
}

// RunListener is the host's result listener
type RunListener interface {
	TestSetStarting(entry ReportEntry)
	TestSetCompleted(entry ReportEntry)
	TestStarting(entry ReportEntry)
	TestSucceeded(entry ReportEntry)
	TestFailed(entry ReportEntry)
	TestSkipped(entry ReportEntry)
	BeforeConfigurationFailed(entry ReportEntry)
	AfterConfigurationFailed(entry ReportEntry)
}

var _ RunListener = Multi(nil)

// Multi forwards every event to each listener in order
type Multi []RunListener

func (m Multi) TestSetStarting(entry ReportEntry) {
	for _, l := range m {
		l.TestSetStarting(entry)
	}
}

func (m Multi) TestSetCompleted(entry ReportEntry) {
	for _, l := range m {
		l.TestSetCompleted(entry)
	}
}

func (m Multi) TestStarting(entry ReportEntry) {
	for _, l := range m {
		l.TestStarting(entry)
	}
}

func (m Multi) TestSucceeded(entry ReportEntry) {
	for _, l := range m {
		l.TestSucceeded(entry)
	}
}

func (m Multi) TestFailed(entry ReportEntry) {
	for _, l := range m {
		l.TestFailed(entry)
	}
}

func (m Multi) TestSkipped(entry ReportEntry) {
	for _, l := range m {
		l.TestSkipped(entry)
	}
}

func (m Multi) BeforeConfigurationFailed(entry ReportEntry) {
	for _, l := range m {
		l.BeforeConfigurationFailed(entry)
	}
}

func (m Multi) AfterConfigurationFailed(entry ReportEntry) {
	for _, l := range m {
		l.AfterConfigurationFailed(entry)
	}
}
