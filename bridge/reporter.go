package bridge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Reporter is an engine listener that forwards to a host listener
type Reporter interface {
	engine.Listener
}

// Factory constructs a reporter for a host listener and run identity
type Factory func(listener reporting.RunListener, runID string) (Reporter, error)

// Reporters holds the reporter factory for each capability. A basic factory
// is always present.
type Reporters struct {
	factories map[Capability]Factory
}

// NewReporters returns a set with only the basic reporter registered
func NewReporters() *Reporters {
	return &Reporters{
		factories: map[Capability]Factory{
			Basic: func(l reporting.RunListener, _ string) (Reporter, error) {
				return NewBasicReporter(l), nil
			},
		},
	}
}

// DefaultReporters returns a set with both the basic and extended reporters registered
func DefaultReporters() *Reporters {
	r := NewReporters()
	r.Register(Extended, func(l reporting.RunListener, runID string) (Reporter, error) {
		return NewExtendedReporter(l, runID)
	})
	return r
}

// Register sets the factory for a capability, replacing any previous one
func (r *Reporters) Register(c Capability, f Factory) {
	r.factories[c] = f
}

// Has reports whether a factory is registered for the capability
func (r *Reporters) Has(c Capability) bool {
	_, ok := r.factories[c]
	return ok
}

// Select returns the reporter to attach for the given capability. An engine
// with extended capability falls back to the basic reporter when no extended
// factory is registered. A registered extended factory that fails is a
// defect and yields a *types.FatalError.
func (r *Reporters) Select(c Capability, listener reporting.RunListener, runID string) (Reporter, error) {
	if listener == nil {
		return nil, errors.New("listener is required")
	}
	if c == Extended {
		if f, ok := r.factories[Extended]; ok {
			rep, err := construct(f, listener, runID)
			if err != nil {
				return nil, types.NewFatalError("configuration-aware reporter could not be constructed", err)
			}
			return rep, nil
		}
	}
	rep, err := construct(r.factories[Basic], listener, runID)
	if err != nil {
		return nil, types.NewFatalError("reporter could not be constructed", err)
	}
	return rep, nil
}

func construct(f Factory, listener reporting.RunListener, runID string) (rep Reporter, err error) {
	if f == nil {
		return nil, errors.New("no reporter factory registered")
	}
	defer func() {
		if r := recover(); r != nil {
			rep = nil
			err = fmt.Errorf("reporter factory panicked: %v", r)
		}
	}()
	rep, err = f(listener, runID)
	if err == nil && rep == nil {
		err = errors.New("reporter factory returned no reporter")
	}
	return rep, err
}

func testSetEntry(ctx *engine.TestContext) reporting.ReportEntry {
	return reporting.ReportEntry{
		Source:  ctx.Suite,
		Name:    ctx.Test,
		Elapsed: elapsed(ctx),
	}
}

func methodEntry(r *engine.Result) reporting.ReportEntry {
	entry := reporting.ReportEntry{
		Source:  r.Class,
		Name:    types.GetTestDisplayName(r.Method, r.Class),
		Groups:  r.Groups,
		Elapsed: r.Elapsed(),
		Cause:   r.Err,
		Output:  r.Output,
	}
	if r.Err != nil {
		entry.Message = firstLine(r.Err.Error())
	}
	return entry
}

func elapsed(ctx *engine.TestContext) time.Duration {
	if ctx.Start.IsZero() || ctx.End.IsZero() || ctx.End.Before(ctx.Start) {
		return 0
	}
	return ctx.End.Sub(ctx.Start)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
