package plan

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// SuiteConfigurer applies suite-scoped settings to a freshly created suite
type SuiteConfigurer interface {
	ConfigureSuite(suite *Suite, opts types.Options) error
}

// Config holds configuration for creating a new builder
type Config struct {
	Resolver   *Resolver
	Configurer SuiteConfigurer
	Options    types.Options
	Selectors  []selector.Selector
	Log        log.Logger
}

// Builder groups classes into a plan
type Builder struct {
	resolver   *Resolver
	configurer SuiteConfigurer
	options    types.Options
	selectors  []selector.Selector
	log        log.Logger
}

// NewBuilder creates a new builder instance
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Configurer == nil {
		return nil, fmt.Errorf("suite configurer is required")
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewResolver(MetadataAvailable)
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	return &Builder{
		resolver:   cfg.Resolver,
		configurer: cfg.Configurer,
		options:    cfg.Options,
		selectors:  cfg.Selectors,
		log:        cfg.Log,
	}, nil
}

// Build groups classes by resolved (suite, test) in first-seen order. A new
// suite is configured exactly once when first created; a new test receives
// the builder's selectors exactly once when first created.
func (b *Builder) Build(classes []*types.ClassDescriptor) (*Plan, error) {
	p := &Plan{}
	suites := make(map[string]*Suite)

	for _, class := range classes {
		if class == nil {
			return nil, fmt.Errorf("nil class descriptor in input")
		}
		suiteName, testName := b.resolver.Resolve(class)

		suite, ok := suites[suiteName]
		if !ok {
			suite = NewSuite(suiteName)
			if err := b.configurer.ConfigureSuite(suite, b.options); err != nil {
				return nil, fmt.Errorf("configuring suite %q: %w", suiteName, err)
			}
			suites[suiteName] = suite
			p.Suites = append(p.Suites, suite)
			b.log.Debug("Created suite", "suite", suiteName)
		}

		test, created := suite.AddTest(testName, b.selectors)
		if created {
			b.log.Debug("Created test", "suite", suiteName, "test", testName, "selectors", len(test.Selectors))
		}
		test.AddClass(class.Name)
	}

	b.log.Debug("Plan built", "suites", len(p.Suites), "classes", p.ClassCount())
	return p, nil
}
