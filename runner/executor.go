package runner

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/bridge"
	"github.com/ethereum-optimism/infra/op-testbridge/configurator"
	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// Request describes one run. Classes are used by RunClasses and SuiteFiles by RunSuiteFiles.
type Request struct {
	Classes       []*types.ClassDescriptor
	SuiteFiles    []string
	SourceDir     string
	Options       types.Options
	Listener      reporting.RunListener
	RunID         string
	ReportsDir    string
	MethodPattern string
}

// EngineFactory creates a fresh engine for each run
type EngineFactory func() (engine.Engine, error)

// Config holds configuration for creating a new executor
type Config struct {
	Engine        EngineFactory
	Configurators *configurator.Registry
	Selectors     *selector.Registry
	Reporters     *bridge.Reporters
	Resolver      *plan.Resolver
	Log           log.Logger
}

// Executor is the entry point for running classes or suite descriptor files
type Executor struct {
	newEngine     EngineFactory
	configurators *configurator.Registry
	chain         *selector.Chain
	resolver      *plan.Resolver
	runner        *EngineRunner
	log           log.Logger
}

// NewExecutor creates a new executor
func NewExecutor(cfg Config) (*Executor, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine factory is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Configurators == nil {
		cfg.Configurators = configurator.DefaultRegistry()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = plan.NewResolver(plan.MetadataAvailable)
	}
	return &Executor{
		newEngine:     cfg.Engine,
		configurators: cfg.Configurators,
		chain:         selector.NewChain(cfg.Selectors),
		resolver:      cfg.Resolver,
		runner:        NewEngineRunner(cfg.Reporters, cfg.Log),
		log:           cfg.Log,
	}, nil
}

// RunClasses builds a plan from the request's classes and runs it
func (x *Executor) RunClasses(ctx context.Context, req Request) error {
	cfgr, err := x.configurator(req.Options)
	if err != nil {
		return err
	}

	selectors, err := x.chain.Build(req.Options, req.MethodPattern)
	if err != nil {
		return err
	}

	builder, err := plan.NewBuilder(plan.Config{
		Resolver:   x.resolver,
		Configurer: cfgr,
		Options:    req.Options,
		Selectors:  selectors,
		Log:        x.log,
	})
	if err != nil {
		return err
	}
	p, err := builder.Build(req.Classes)
	if err != nil {
		return err
	}
	x.log.Info("Running classes", "classes", len(req.Classes), "suites", len(p.Suites), "run_id", req.RunID)

	eng, err := x.newEngine()
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	return x.runner.Run(ctx, eng, RunInput{
		Suites:       p.Suites,
		Configurator: cfgr,
		Options:      req.Options,
		Listener:     req.Listener,
		RunID:        req.RunID,
		ReportsDir:   req.ReportsDir,
		SourceDir:    req.SourceDir,
	})
}

// RunSuiteFiles hands externally authored suite descriptors straight to the engine
func (x *Executor) RunSuiteFiles(ctx context.Context, req Request) error {
	cfgr, err := x.configurator(req.Options)
	if err != nil {
		return err
	}
	if len(req.SuiteFiles) == 0 {
		return fmt.Errorf("no suite files given")
	}
	x.log.Info("Running suite files", "files", len(req.SuiteFiles), "run_id", req.RunID)

	eng, err := x.newEngine()
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	return x.runner.Run(ctx, eng, RunInput{
		SuiteFiles:   req.SuiteFiles,
		Configurator: cfgr,
		Options:      req.Options,
		Listener:     req.Listener,
		RunID:        req.RunID,
		ReportsDir:   req.ReportsDir,
		SourceDir:    req.SourceDir,
	})
}

func (x *Executor) configurator(opts types.Options) (configurator.Configurator, error) {
	name := opts.Get(types.OptionConfigurator)
	x.log.Info("Configuring engine", "configurator", name)
	return x.configurators.New(name, x.log)
}
