package types

// MetadataDisabled switches metadata resolution off for every class in a catalog
const MetadataDisabled = "disabled"

// CatalogConfig represents a class catalog file
type CatalogConfig struct {
	Metadata string        `yaml:"metadata,omitempty"`
	Classes  []ClassConfig `yaml:"classes"`
}

// ClassConfig represents a single class entry of a catalog.
// Abstract entries only exist to be extended; they are never run.
type ClassConfig struct {
	Name     string          `yaml:"name"`
	Extends  string          `yaml:"extends,omitempty"`
	Abstract bool            `yaml:"abstract,omitempty"`
	Test     *TestAnnotation `yaml:"test,omitempty"`
}

// TestAnnotation is the YAML form of ClassMetadata
type TestAnnotation struct {
	SuiteName string `yaml:"suiteName,omitempty"`
	TestName  string `yaml:"testName,omitempty"`
}

// ToMetadata converts the annotation into ClassMetadata
func (a *TestAnnotation) ToMetadata() *ClassMetadata {
	if a == nil {
		return nil
	}
	return &ClassMetadata{SuiteName: a.SuiteName, TestName: a.TestName}
}

// SuiteDescriptor represents an externally authored suite file
type SuiteDescriptor struct {
	Name        string            `yaml:"name"`
	Parallel    string            `yaml:"parallel,omitempty"`
	ThreadCount int               `yaml:"thread-count,omitempty"`
	Parameters  map[string]string `yaml:"parameters,omitempty"`
	Tests       []TestDescriptor  `yaml:"tests"`
}

// TestDescriptor represents one test of a suite file
type TestDescriptor struct {
	Name          string   `yaml:"name"`
	Groups        string   `yaml:"groups,omitempty"`
	ExcludeGroups string   `yaml:"exclude-groups,omitempty"`
	Methods       string   `yaml:"methods,omitempty"`
	Classes       []string `yaml:"classes"`
}
