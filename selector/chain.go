package selector

import (
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Chain builds the selectors attached to every test node of a plan
type Chain struct {
	registry *Registry
}

// NewChain creates a chain resolving filters through registry.
// A nil registry means DefaultRegistry.
func NewChain(registry *Registry) *Chain {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Chain{registry: registry}
}

// Registry returns the registry the chain resolves filters through
func (c *Chain) Registry() *Registry {
	return c.registry
}

// Build returns the selectors derived from opts and methodPattern, group
// matching first. Each filter is constructed once so that a missing or broken
// implementation fails the build before any plan exists.
func (c *Chain) Build(opts types.Options, methodPattern string) ([]Selector, error) {
	var selectors []Selector

	if s, ok := GroupSelector(opts.Get(types.OptionGroups), opts.Get(types.OptionExcludeGroups)); ok {
		selectors = append(selectors, s)
	}
	if s, ok := MethodNameSelector(methodPattern); ok {
		selectors = append(selectors, s)
	}

	for _, s := range selectors {
		if _, err := c.registry.Construct(s); err != nil {
			return nil, types.NewTestSetFailedError(err.Error(), err)
		}
	}
	return selectors, nil
}

// GroupSelector builds a group selector from explicit expressions.
// It returns false when both expressions are blank.
func GroupSelector(include, exclude string) (Selector, bool) {
	params := make(map[string]string)
	if !types.IsBlank(include) {
		params[ParamInclude] = include
	}
	if !types.IsBlank(exclude) {
		params[ParamExclude] = exclude
	}
	if len(params) == 0 {
		return Selector{}, false
	}
	return Selector{Name: GroupMatcherName, Priority: GroupMatcherPriority, Params: params}, true
}

// MethodNameSelector builds a method-name selector. It returns false for a blank pattern.
func MethodNameSelector(pattern string) (Selector, bool) {
	if types.IsBlank(pattern) {
		return Selector{}, false
	}
	return Selector{
		Name:     MethodNameName,
		Priority: MethodNamePriority,
		Params:   map[string]string{ParamPattern: pattern},
	}, true
}
