// Package configurator holds the named strategies that turn caller options
// into suite-scoped and engine-scoped settings.
package configurator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Built-in strategy names
const (
	DefaultName = "default"
	NoopName    = "noop"
	StrictName  = "strict"
)

// Configurator applies options to suites and engines
type Configurator interface {
	plan.SuiteConfigurer
	// ConfigureEngine applies engine-scoped options once before invocation
	ConfigureEngine(e engine.Engine, opts types.Options) error
}

// Constructor builds a configurator instance
type Constructor func(logger log.Logger) (Configurator, error)

// Registry maps strategy names to constructors
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding the built-in strategies
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DefaultName, func(logger log.Logger) (Configurator, error) {
		return NewDefault(logger), nil
	})
	r.Register(NoopName, func(log.Logger) (Configurator, error) {
		return Noop{}, nil
	})
	r.Register(StrictName, func(logger log.Logger) (Configurator, error) {
		return NewStrict(logger), nil
	})
	return r
}

// Register adds or replaces a strategy
func (r *Registry) Register(name string, c Constructor) {
	r.constructors[name] = c
}

// Names returns the registered strategy names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates the strategy registered under name. A blank or unknown
// name, or a failing constructor, yields a *types.FatalError.
func (r *Registry) New(name string, logger log.Logger) (c Configurator, err error) {
	if types.IsBlank(name) {
		return nil, types.NewFatalError("no configurator specified", nil)
	}
	name = strings.TrimSpace(name)
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, types.NewFatalError(
			fmt.Sprintf("unknown configurator %q (available: %s)", name, strings.Join(r.Names(), ", ")), nil)
	}
	if logger == nil {
		logger = log.New()
	}

	defer func() {
		if rec := recover(); rec != nil {
			c = nil
			err = types.NewFatalError(fmt.Sprintf("cannot instantiate configurator %q", name),
				fmt.Errorf("constructor panicked: %v", rec))
		}
	}()
	c, err = ctor(logger.New("configurator", name))
	if err == nil && c == nil {
		err = errors.New("constructor returned no configurator")
	}
	if err != nil {
		return nil, types.NewFatalError(fmt.Sprintf("cannot instantiate configurator %q", name), err)
	}
	return c, nil
}

var _ Configurator = Noop{}

// Noop leaves suites and engines untouched
type Noop struct{}

func (Noop) ConfigureSuite(*plan.Suite, types.Options) error { return nil }

func (Noop) ConfigureEngine(engine.Engine, types.Options) error { return nil }
