package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-testbridge/bridge"
	"github.com/ethereum-optimism/infra/op-testbridge/configurator"
	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// RunInput is everything the engine runner needs for one invocation.
// Exactly one of Suites and SuiteFiles is expected to be set.
type RunInput struct {
	Suites       []*plan.Suite
	SuiteFiles   []string
	Configurator configurator.Configurator
	Options      types.Options
	Listener     reporting.RunListener
	RunID        string
	ReportsDir   string
	SourceDir    string
}

// EngineRunner prepares an engine and invokes it once
type EngineRunner struct {
	reporters *bridge.Reporters
	log       log.Logger
	tracer    trace.Tracer
}

func NewEngineRunner(reporters *bridge.Reporters, logger log.Logger) *EngineRunner {
	if reporters == nil {
		reporters = bridge.DefaultReporters()
	}
	if logger == nil {
		logger = log.New()
		logger.Error("No logger provided, using default")
	}
	return &EngineRunner{
		reporters: reporters,
		log:       logger,
		tracer:    otel.Tracer("engine runner"),
	}
}

// Run configures the engine, attaches the result bridge and blocks until the
// engine has finished. A blank run ID is rejected before the engine is touched. Errors returned by the engine itself are passed
// through unchanged.
func (r *EngineRunner) Run(ctx context.Context, e engine.Engine, in RunInput) error {
	if e == nil {
		return fmt.Errorf("engine is required")
	}
	if in.Configurator == nil {
		return fmt.Errorf("configurator is required")
	}
	if types.IsBlank(in.RunID) {
		return types.NewTestSetFailedError("run id is required", nil)
	}

	if err := in.Configurator.ConfigureEngine(e, in.Options); err != nil {
		return err
	}
	// engine console output stays off; results flow through the listener
	e.SetVerbose(0)

	capability := bridge.Probe(e)
	reporter, err := r.reporters.Select(capability, in.Listener, in.RunID)
	if err != nil {
		return err
	}
	e.AddListener(reporter)
	r.log.Debug("Attached reporter", "capability", capability, "run_id", in.RunID)

	reportsDir, err := filepath.Abs(in.ReportsDir)
	if err != nil {
		return fmt.Errorf("resolving reports directory: %w", err)
	}
	e.SetOutputDirectory(reportsDir)

	if !types.IsBlank(in.SourceDir) {
		e.SetSourcePath(in.SourceDir)
	}

	if len(in.SuiteFiles) > 0 {
		e.SetSuiteFiles(in.SuiteFiles)
	} else {
		e.SetSuites(in.Suites)
	}

	ctx, span := r.tracer.Start(ctx, "engine run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", in.RunID),
		attribute.String("capability", capability.String()),
		attribute.Int("suites", len(in.Suites)),
		attribute.Int("suite_files", len(in.SuiteFiles)),
	)

	return e.Run(ctx)
}
