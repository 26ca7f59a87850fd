package testbridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/engine/gotest"
	"github.com/ethereum-optimism/infra/op-testbridge/exitcodes"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/registry"
	"github.com/ethereum-optimism/infra/op-testbridge/reporting"
	"github.com/ethereum-optimism/infra/op-testbridge/runner"
	"github.com/ethereum-optimism/infra/op-testbridge/service"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

// testBridge implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &testBridge{}

// testBridge runs the configured classes through the engine, once or on an interval.
type testBridge struct {
	config    *Config
	version   string
	scheduler RunScheduler
	executor  TestExecutor
	formatter ResultFormatter
	reporter  MetricsReporter
	metrics   *service.MetricsServer

	mu     sync.Mutex
	result *reporting.RunResult

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*testBridge, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating test bridge with config",
		"catalog", config.CatalogFile,
		"testDir", config.TestDir,
		"suiteFiles", config.SuiteFiles,
		"sourceDir", config.SourceDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	var classes ClassSource
	resolver := plan.NewResolver(plan.MetadataAvailable)
	if len(config.SuiteFiles) == 0 {
		reg, err := registry.NewRegistry(registry.Config{
			Log:          config.Log,
			CatalogFile:  config.CatalogFile,
			DiscoverMode: config.CatalogFile == "",
			TestDir:      config.TestDir,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		classes = reg
		resolver = plan.NewResolver(reg.MetadataAvailable)
	}

	exec, err := runner.NewExecutor(runner.Config{
		Engine: func() (engine.Engine, error) {
			return gotest.New(gotest.Config{
				Log:         config.Log,
				WorkDir:     config.SourceDir,
				GoBinary:    config.GoBinary,
				BasicEvents: config.BasicEvents,
			})
		},
		Resolver: resolver,
		Log:      config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}
	config.Log.Info("testbridge.New: created registry and executor")

	return &testBridge{
		config:           config,
		version:          version,
		scheduler:        NewIntervalScheduler(config.RunInterval, config.RunOnce, config.Log),
		executor:         NewDefaultTestExecutor(config, classes, exec),
		formatter:        NewConsoleResultFormatter(config.Log, os.Stdout, config.ShowMethods),
		reporter:         NewDefaultMetricsReporter(),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the tests immediately and then at the configured interval.
// Start implements the cliapp.Lifecycle interface.
func (b *testBridge) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			b.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	b.running.Store(true)
	b.scheduler.RegisterCallback(b.runTests)
	b.startMetrics(ctx)

	if b.config.RunOnce {
		b.config.Log.Info("Starting op-testbridge in run-once mode", "version", b.version)
	} else {
		b.config.Log.Info("Starting op-testbridge in continuous mode", "version", b.version, "interval", b.config.RunInterval)
	}

	if err := b.scheduler.Start(ctx); err != nil {
		b.config.Log.Error("Runtime error running tests", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	if !b.config.RunOnce {
		b.config.Log.Debug("op-testbridge started successfully")
		return nil
	}

	b.config.Log.Info("Tests completed, exiting (run-once mode)")
	result := b.Result()
	if result != nil && result.Status == types.TestStatusFail {
		b.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
		return NewTestFailureError(summaryLine(result))
	}

	go func() {
		b.shutdownCallback(nil)
	}()
	return nil
}

// startMetrics serves /metrics when the metrics flags enable it
func (b *testBridge) startMetrics(ctx context.Context) {
	cfg := b.config.Metrics
	if !cfg.Enabled {
		return
	}
	b.metrics = &service.MetricsServer{}
	addr := net.JoinHostPort(cfg.ListenAddr, strconv.Itoa(cfg.ListenPort))
	b.config.Log.Info("Starting metrics server", "addr", addr)
	go func() {
		if err := b.metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.config.Log.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
}

// runTests performs a single run and publishes its results
func (b *testBridge) runTests(ctx context.Context) error {
	runID := uuid.New().String()
	result, err := b.executor.RunTests(ctx, runID)
	if err != nil {
		return NewRuntimeError(err)
	}

	b.mu.Lock()
	b.result = result
	b.mu.Unlock()

	if err := b.formatter.FormatResults(result); err != nil {
		b.config.Log.Warn("Failed to print results", "run_id", runID, "error", err)
	}
	b.reporter.ReportResults(result)
	return nil
}

// Result returns the result of the most recent run
func (b *testBridge) Result() *reporting.RunResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// Stop stops the op-testbridge service.
// Stop implements the cliapp.Lifecycle interface.
func (b *testBridge) Stop(ctx context.Context) error {
	b.config.Log.Info("Stopping op-testbridge")

	if !b.running.CompareAndSwap(true, false) {
		b.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}
	if err := b.scheduler.Stop(); err != nil {
		return err
	}
	if err := b.scheduler.WaitForShutdown(ctx); err != nil {
		return err
	}
	if b.metrics != nil {
		if err := b.metrics.Shutdown(); err != nil {
			b.config.Log.Warn("Failed to stop metrics server", "error", err)
		}
	}

	b.config.Log.Info("op-testbridge stopped successfully")
	return nil
}

// Stopped returns true if the op-testbridge service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (b *testBridge) Stopped() bool {
	return !b.running.Load()
}
