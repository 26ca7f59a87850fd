// Package selector builds the method filters attached to test nodes of a plan.
//
// A Selector is a value object: it names the filter implementation to apply,
// carries the parameters that implementation needs and a priority that orders
// evaluation. Filters are instantiated from a Registry by name when a
// pipeline is assembled; nothing is published through global state.
package selector

import (
	"fmt"
	"sort"
)

const (
	// GroupMatcherName selects methods by group include/exclude expressions
	GroupMatcherName = "group-matcher"
	// MethodNameName selects methods by name pattern
	MethodNameName = "method-name"

	// GroupMatcherPriority orders the group filter before the method-name filter
	GroupMatcherPriority = 9999
	// MethodNamePriority makes the method-name filter the final gate
	MethodNamePriority = 10000
)

// Parameter keys carried by the built-in selectors
const (
	ParamInclude = "include"
	ParamExclude = "exclude"
	ParamPattern = "pattern"
)

// Selector identifies a filter implementation, its parameters and its priority.
// Lower priorities are evaluated first.
type Selector struct {
	Name     string
	Priority int
	Params   map[string]string
}

// Param returns the named parameter, or "" if it is not set
func (s Selector) Param(key string) string {
	return s.Params[key]
}

// String implements the Stringer interface for Selector
func (s Selector) String() string {
	return fmt.Sprintf("%s(priority=%d)", s.Name, s.Priority)
}

// Method is the unit a filter decides on
type Method struct {
	Class  string
	Name   string
	Groups []string
}

// Filter decides whether a method runs
type Filter interface {
	Include(m Method) bool
}

// FilterFunc adapts a function to the Filter interface
type FilterFunc func(m Method) bool

// Include implements Filter
func (f FilterFunc) Include(m Method) bool {
	return f(m)
}

// Factory constructs a filter from selector parameters
type Factory func(params map[string]string) (Filter, error)

// Registry maps selector names to filter factories
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in group and method-name filters
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GroupMatcherName, NewGroupFilter)
	r.Register(MethodNameName, NewMethodNameFilter)
	return r
}

// Register adds or replaces the factory for name
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Lookup returns the factory registered under name
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok && f != nil
}

// Construct instantiates the filter for a selector. A missing registration,
// a factory error and a factory panic are all reported as errors.
func (r *Registry) Construct(s Selector) (f Filter, err error) {
	factory, ok := r.Lookup(s.Name)
	if !ok {
		return nil, fmt.Errorf("no filter registered under %q", s.Name)
	}
	defer func() {
		if rec := recover(); rec != nil {
			f = nil
			err = fmt.Errorf("filter %q panicked during construction: %v", s.Name, rec)
		}
	}()
	f, err = factory(s.Params)
	if err != nil {
		return nil, fmt.Errorf("constructing filter %q: %w", s.Name, err)
	}
	if f == nil {
		return nil, fmt.Errorf("filter %q constructed as nil", s.Name)
	}
	return f, nil
}

// Pipeline evaluates filters in ascending priority order
type Pipeline struct {
	selectors []Selector
	filters   []Filter
}

// Pipeline assembles the filters for selectors, ordered by priority.
// Selectors with equal priority keep their relative order.
func (r *Registry) Pipeline(selectors []Selector) (*Pipeline, error) {
	ordered := make([]Selector, len(selectors))
	copy(ordered, selectors)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	p := &Pipeline{selectors: ordered}
	for _, s := range ordered {
		f, err := r.Construct(s)
		if err != nil {
			return nil, err
		}
		p.filters = append(p.filters, f)
	}
	return p, nil
}

// Selectors returns the selectors in evaluation order
func (p *Pipeline) Selectors() []Selector {
	return p.selectors
}

// Include reports whether every filter keeps m. Evaluation stops at the first rejection.
func (p *Pipeline) Include(m Method) bool {
	for _, f := range p.filters {
		if !f.Include(m) {
			return false
		}
	}
	return true
}

// Apply returns the methods the pipeline keeps, in input order
func (p *Pipeline) Apply(methods []Method) []Method {
	kept := make([]Method, 0, len(methods))
	for _, m := range methods {
		if p.Include(m) {
			kept = append(kept, m)
		}
	}
	return kept
}
