// Package plan derives the suite -> test -> class execution plan handed to the engine.
package plan

import (
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
)

// Plan is an ordered list of suites, unique by name
type Plan struct {
	Suites []*Suite
}

// Suite returns the suite named name, or nil
func (p *Plan) Suite(name string) *Suite {
	for _, s := range p.Suites {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ClassCount returns the number of classes across all suites and tests
func (p *Plan) ClassCount() int {
	n := 0
	for _, s := range p.Suites {
		for _, t := range s.Tests {
			n += len(t.Classes)
		}
	}
	return n
}

// Suite is a named grouping of tests. Parallel, ThreadCount and Parameters
// are suite-scoped settings filled in by a configurator.
type Suite struct {
	Name        string
	Parallel    string
	ThreadCount int
	Parameters  map[string]string
	Tests       []*Test

	testsByName map[string]*Test
}

// NewSuite creates an empty suite
func NewSuite(name string) *Suite {
	return &Suite{
		Name:        name,
		Parameters:  make(map[string]string),
		testsByName: make(map[string]*Test),
	}
}

// Test returns the test named name, or nil
func (s *Suite) Test(name string) *Test {
	return s.testsByName[name]
}

// AddTest appends a new test to the suite. It returns the existing test if one
// with the same name is already present.
func (s *Suite) AddTest(name string, selectors []selector.Selector) (*Test, bool) {
	if t, ok := s.testsByName[name]; ok {
		return t, false
	}
	t := &Test{Name: name}
	if len(selectors) > 0 {
		t.Selectors = make([]selector.Selector, len(selectors))
		copy(t.Selectors, selectors)
	}
	if s.testsByName == nil {
		s.testsByName = make(map[string]*Test)
	}
	s.testsByName[name] = t
	s.Tests = append(s.Tests, t)
	return t, true
}

// Test is a named grouping of classes within a suite; filters attach here
type Test struct {
	Name      string
	Selectors []selector.Selector
	Classes   []string
}

// AddClass appends a class to the test
func (t *Test) AddClass(name string) {
	t.Classes = append(t.Classes, name)
}
