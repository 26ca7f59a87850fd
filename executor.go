package testbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/runner"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// PlanRunner runs classes or suite files against an engine
type PlanRunner interface {
	RunClasses(ctx context.Context, req runner.Request) error
	RunSuiteFiles(ctx context.Context, req runner.Request) error
}

var _ PlanRunner = (*runner.Executor)(nil)

// ClassSource lists the classes to run
type ClassSource interface {
	GetClasses() []*types.ClassDescriptor
}

// TestExecutor performs one complete run and returns its aggregated result
type TestExecutor interface {
	RunTests(ctx context.Context, runID string) (*reporting.RunResult, error)
}

// DefaultTestExecutor implements the TestExecutor interface
type DefaultTestExecutor struct {
	config  *Config
	classes ClassSource
	runner  PlanRunner
	logger  log.Logger
}

// NewDefaultTestExecutor creates a new DefaultTestExecutor. classes may be
// nil when the config only names suite files.
func NewDefaultTestExecutor(config *Config, classes ClassSource, runner PlanRunner) *DefaultTestExecutor {
	return &DefaultTestExecutor{
		config:  config,
		classes: classes,
		runner:  runner,
		logger:  config.Log,
	}
}

// EffectiveConfigFile is written to every run directory
const EffectiveConfigFile = "effective-config.json"

// RunTests runs every class, or every suite file, and collects the results.
// Raw engine output for the run goes to its own directory below ReportsDir.
func (e *DefaultTestExecutor) RunTests(ctx context.Context, runID string) (*reporting.RunResult, error) {
	collector := reporting.NewCollector(runID)
	req := runner.Request{
		SourceDir:     e.config.SourceDir,
		Options:       e.config.Options,
		RunID:         runID,
		ReportsDir:    filepath.Join(e.config.ReportsDir, runID),
		MethodPattern: e.config.MethodPattern,
		Listener: reporting.Multi{
			collector,
			reporting.NewLogListener(e.logger),
			reporting.NewMetricsListener(runID),
		},
	}

	if e.config.ReportsDir != "" {
		if err := writeSnapshot(req.ReportsDir, e.config.Snapshot(runID)); err != nil {
			e.logger.Warn("Failed to write effective config", "run_id", runID, "error", err)
		}
	}

	var err error
	if len(e.config.SuiteFiles) > 0 {
		e.logger.Info("Running suite files", "run_id", runID, "files", len(e.config.SuiteFiles))
		req.SuiteFiles = e.config.SuiteFiles
		err = e.runner.RunSuiteFiles(ctx, req)
	} else {
		if e.classes != nil {
			req.Classes = e.classes.GetClasses()
		}
		e.logger.Info("Running classes", "run_id", runID, "classes", len(req.Classes))
		err = e.runner.RunClasses(ctx, req)
	}
	if err != nil {
		e.logger.Error("Error running tests", "run_id", runID, "error", err)
		return nil, err
	}

	result := collector.Result()
	e.logger.Info("Test run completed", "run_id", runID, "status", result.Status)
	return result, nil
}

func writeSnapshot(dir string, snap *types.EffectiveConfigSnapshot) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode effective config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, EffectiveConfigFile), data, 0644)
}
