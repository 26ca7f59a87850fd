package gotest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// LoadSuiteFiles reads suite descriptor files into plan suites, in file order.
// A file may hold several YAML documents, one suite each.
func LoadSuiteFiles(paths []string) ([]*plan.Suite, error) {
	var suites []*plan.Suite
	seen := make(map[string]string)
	for _, path := range paths {
		descs, err := readSuiteFile(path)
		if err != nil {
			return nil, err
		}
		for _, desc := range descs {
			suite, err := suiteFromDescriptor(desc)
			if err != nil {
				return nil, fmt.Errorf("suite file %s: %w", path, err)
			}
			if prev, dup := seen[suite.Name]; dup {
				return nil, fmt.Errorf("suite %q defined in both %s and %s", suite.Name, prev, path)
			}
			seen[suite.Name] = path
			suites = append(suites, suite)
		}
	}
	return suites, nil
}

func readSuiteFile(path string) ([]types.SuiteDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	var descs []types.SuiteDescriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var desc types.SuiteDescriptor
		err := dec.Decode(&desc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing suite file %s: %w", path, err)
		}
		descs = append(descs, desc)
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("suite file %s is empty", path)
	}
	return descs, nil
}

func suiteFromDescriptor(desc types.SuiteDescriptor) (*plan.Suite, error) {
	if strings.TrimSpace(desc.Name) == "" {
		return nil, fmt.Errorf("suite without a name")
	}
	mode := strings.ToLower(strings.TrimSpace(desc.Parallel))
	if err := engine.ValidateParallelMode(mode); err != nil {
		return nil, fmt.Errorf("suite %q: %w", desc.Name, err)
	}
	if desc.ThreadCount < 0 {
		return nil, fmt.Errorf("suite %q: thread-count must not be negative", desc.Name)
	}

	suite := plan.NewSuite(desc.Name)
	suite.Parallel = mode
	suite.ThreadCount = desc.ThreadCount
	for k, v := range desc.Parameters {
		suite.Parameters[k] = v
	}

	for _, td := range desc.Tests {
		if strings.TrimSpace(td.Name) == "" {
			return nil, fmt.Errorf("suite %q: test without a name", desc.Name)
		}
		if len(td.Classes) == 0 {
			return nil, fmt.Errorf("suite %q: test %q lists no classes", desc.Name, td.Name)
		}
		var selectors []selector.Selector
		if s, ok := selector.GroupSelector(td.Groups, td.ExcludeGroups); ok {
			selectors = append(selectors, s)
		}
		if s, ok := selector.MethodNameSelector(td.Methods); ok {
			selectors = append(selectors, s)
		}
		test, created := suite.AddTest(td.Name, selectors)
		if !created {
			return nil, fmt.Errorf("suite %q: duplicate test %q", desc.Name, td.Name)
		}
		for _, class := range td.Classes {
			test.AddClass(class)
		}
	}
	return suite, nil
}
