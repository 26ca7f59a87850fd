package engine

import (
	"sync"

	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Dispatcher fans callbacks out to listeners. Dispatch is serialized so that
// listeners observe one ordered stream even when the engine runs work
// concurrently. Configuration callbacks only reach listeners implementing
// ConfigurationListener, and only when configuration events are enabled.
type Dispatcher struct {
	mu            sync.Mutex
	listeners     []Listener
	configEnabled bool
}

// NewDispatcher creates a dispatcher
func NewDispatcher(configEvents bool) *Dispatcher {
	return &Dispatcher{configEnabled: configEvents}
}

// Add registers a listener
func (d *Dispatcher) Add(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Len returns the number of registered listeners
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

func (d *Dispatcher) Start(ctx *TestContext) {
	d.each(func(l Listener) { l.OnStart(ctx) })
}

func (d *Dispatcher) Finish(ctx *TestContext) {
	d.each(func(l Listener) { l.OnFinish(ctx) })
}

func (d *Dispatcher) TestStart(r *Result) {
	d.each(func(l Listener) { l.OnTestStart(r) })
}

// TestDone routes r to the success, failure or skip callback according to its status
func (d *Dispatcher) TestDone(r *Result) {
	d.each(func(l Listener) {
		switch r.Status {
		case types.TestStatusPass:
			l.OnTestSuccess(r)
		case types.TestStatusSkip:
			l.OnTestSkipped(r)
		default:
			l.OnTestFailure(r)
		}
	})
}

// ConfigurationDone routes a configuration result to configuration-aware listeners
func (d *Dispatcher) ConfigurationDone(r *Result) {
	if !d.configEnabled {
		return
	}
	d.each(func(l Listener) {
		cl, ok := l.(ConfigurationListener)
		if !ok {
			return
		}
		switch r.Status {
		case types.TestStatusPass:
			cl.OnConfigurationSuccess(r)
		case types.TestStatusSkip:
			cl.OnConfigurationSkip(r)
		default:
			cl.OnConfigurationFailure(r)
		}
	})
}

func (d *Dispatcher) each(fn func(l Listener)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.listeners {
		fn(l)
	}
}
