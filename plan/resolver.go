package plan

import (
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// MetadataProbe reports whether execution metadata can be read in the current environment
type MetadataProbe func() bool

// MetadataAvailable is a probe that always reports the facility as present
func MetadataAvailable() bool { return true }

// Resolver resolves the suite and test a class belongs to
type Resolver struct {
	available bool
}

// NewResolver runs probe once and returns a resolver bound to its answer.
// A nil probe is treated as MetadataAvailable.
func NewResolver(probe MetadataProbe) *Resolver {
	if probe == nil {
		probe = MetadataAvailable
	}
	return &Resolver{available: probe()}
}

// Available reports the result of the capability probe
func (r *Resolver) Available() bool {
	return r.available
}

// Resolve returns the suite and test names for class. The nearest descriptor
// in the ancestor chain carrying metadata wins and the search stops there;
// each non-blank field of that metadata replaces its default independently.
func (r *Resolver) Resolve(class *types.ClassDescriptor) (suiteName, testName string) {
	suiteName, testName = types.DefaultSuiteName, types.DefaultTestName
	if !r.available {
		return suiteName, testName
	}

	md := findMetadata(class)
	if md == nil {
		return suiteName, testName
	}
	if !types.IsBlank(md.SuiteName) {
		suiteName = md.SuiteName
	}
	if !types.IsBlank(md.TestName) {
		testName = md.TestName
	}
	return suiteName, testName
}

func findMetadata(class *types.ClassDescriptor) *types.ClassMetadata {
	for c := class; c != nil; c = c.Parent {
		if c.Metadata != nil {
			return c.Metadata
		}
	}
	return nil
}
