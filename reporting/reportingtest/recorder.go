// Package reportingtest provides a RunListener that records every call.
package reportingtest

import (
	"sync"

	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
)

// Event is one recorded listener call
type Event struct {
	Kind  string
	Entry reporting.ReportEntry
}

var _ reporting.RunListener = (*Recorder)(nil)

// Recorder records listener calls in order
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(kind string, e reporting.ReportEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: kind, Entry: e})
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the recorded call names in order
func (r *Recorder) Kinds() []string {
	events := r.Events()
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (r *Recorder) TestSetStarting(e reporting.ReportEntry)  { r.add("TestSetStarting", e) }
func (r *Recorder) TestSetCompleted(e reporting.ReportEntry) { r.add("TestSetCompleted", e) }
func (r *Recorder) TestStarting(e reporting.ReportEntry)     { r.add("TestStarting", e) }
func (r *Recorder) TestSucceeded(e reporting.ReportEntry)    { r.add("TestSucceeded", e) }
func (r *Recorder) TestFailed(e reporting.ReportEntry)       { r.add("TestFailed", e) }
func (r *Recorder) TestSkipped(e reporting.ReportEntry)      { r.add("TestSkipped", e) }
func (r *Recorder) BeforeConfigurationFailed(e reporting.ReportEntry) {
	r.add("BeforeConfigurationFailed", e)
}
func (r *Recorder) AfterConfigurationFailed(e reporting.ReportEntry) {
	r.add("AfterConfigurationFailed", e)
}
