// Package types contains shared types used across the test bridge
package types

const (
	// DefaultSuiteName is the suite a class lands in when it carries no suite metadata
	DefaultSuiteName = "Default suite"

	// DefaultTestName is the test a class lands in when it carries no test metadata
	DefaultTestName = "Default test"
)

// ClassMetadata is the declarative execution metadata a class may carry.
// Blank fields leave the defaults in place.
type ClassMetadata struct {
	SuiteName string
	TestName  string
}

// ClassDescriptor identifies a loadable test class. Parent links form the
// ancestor chain that metadata resolution walks, most-derived first.
type ClassDescriptor struct {
	Name     string
	Parent   *ClassDescriptor
	Metadata *ClassMetadata
	Abstract bool
}

// Ancestors returns the chain from c up to the root, starting with c itself.
func (c *ClassDescriptor) Ancestors() []*ClassDescriptor {
	var chain []*ClassDescriptor
	for cur := c; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return chain
}

// String implements the Stringer interface for ClassDescriptor
func (c *ClassDescriptor) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}
