package testbridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-testbridge/flags"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
	"github.com/ethereum/go-ethereum/log"
)

// Config holds the application configuration
type Config struct {
	CatalogFile   string
	TestDir       string
	SuiteFiles    []string
	SourceDir     string        // Directory go test runs in
	ReportsDir    string        // Raw engine output, one subdirectory per run
	GoBinary      string
	MethodPattern string
	BasicEvents   bool          // Drop configuration-method events
	ShowMethods   bool          // Show individual methods in the results table
	RunInterval   time.Duration // Interval between test runs
	RunOnce       bool          // Indicates if the service should exit after one test run
	Options       types.Options
	Metrics       opmetrics.CLIConfig
	Log           log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	catalog, err := absPath("catalog file", ctx.String(flags.Catalog.Name))
	if err != nil {
		return nil, err
	}
	testDir, err := absPath("test directory", ctx.String(flags.TestDir.Name))
	if err != nil {
		return nil, err
	}

	var suiteFiles []string
	for _, f := range ctx.StringSlice(flags.Suites.Name) {
		abs, err := absPath("suite file", f)
		if err != nil {
			return nil, err
		}
		suiteFiles = append(suiteFiles, abs)
	}
	if len(suiteFiles) > 0 && catalog != "" {
		return nil, errors.New("suite files and a catalog cannot be combined")
	}

	sourceDir := ctx.String(flags.SourceDir.Name)
	if sourceDir == "" {
		sourceDir = testDir
	}
	if sourceDir == "" {
		sourceDir = "."
	}
	if sourceDir, err = absPath("source directory", sourceDir); err != nil {
		return nil, err
	}

	reportsDir := ctx.String(flags.ReportsDir.Name)
	if reportsDir == "" {
		reportsDir = "reports"
	}
	if reportsDir, err = absPath("reports directory", reportsDir); err != nil {
		return nil, err
	}

	opts, err := buildOptions(ctx)
	if err != nil {
		return nil, err
	}

	metricsCfg := opmetrics.ReadCLIConfig(ctx)
	if err := metricsCfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)

	return &Config{
		CatalogFile:   catalog,
		TestDir:       testDir,
		SuiteFiles:    suiteFiles,
		SourceDir:     sourceDir,
		ReportsDir:    reportsDir,
		GoBinary:      ctx.String(flags.GoBinary.Name),
		MethodPattern: ctx.String(flags.Methods.Name),
		BasicEvents:   ctx.Bool(flags.BasicEvents.Name),
		ShowMethods:   ctx.Bool(flags.ShowMethods.Name),
		RunInterval:   runInterval,
		RunOnce:       runInterval == 0,
		Options:       opts,
		Metrics:       metricsCfg,
		Log:           log,
	}, nil
}

// buildOptions turns the engine flags into an option set. Repeated --option
// entries are applied last and override flag-derived keys.
func buildOptions(ctx *cli.Context) (types.Options, error) {
	values := map[string]string{
		types.OptionConfigurator: ctx.String(flags.Configurator.Name),
	}
	setIf := func(key, value string) {
		if value != "" {
			values[key] = value
		}
	}
	setIf(types.OptionGroups, ctx.String(flags.Groups.Name))
	setIf(types.OptionExcludeGroups, ctx.String(flags.ExcludeGroups.Name))
	setIf(types.OptionParallel, ctx.String(flags.Parallel.Name))
	setIf(types.OptionTags, ctx.String(flags.Tags.Name))
	if n := ctx.Int(flags.ThreadCount.Name); n > 0 {
		values[types.OptionThreadCount] = strconv.Itoa(n)
	}
	if d := ctx.Duration(flags.Timeout.Name); d > 0 {
		values[types.OptionTimeout] = d.String()
	}
	for key, f := range map[string]*cli.BoolFlag{
		types.OptionRace:     flags.Race,
		types.OptionShort:    flags.Short,
		types.OptionFailFast: flags.FailFast,
	} {
		if ctx.Bool(f.Name) {
			values[key] = "true"
		}
	}

	for _, kv := range ctx.StringSlice(flags.Option.Name) {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return types.Options{}, fmt.Errorf("invalid option %q, expected key=value", kv)
		}
		values[key] = value
	}
	return types.NewOptions(values), nil
}

// Snapshot captures the effective configuration of one run
func (c *Config) Snapshot(runID string) *types.EffectiveConfigSnapshot {
	workDir, _ := os.Getwd()
	options := make([]string, 0, c.Options.Len())
	for _, key := range c.Options.Keys() {
		options = append(options, key+"="+c.Options.Get(key))
	}
	return &types.EffectiveConfigSnapshot{
		RunID: runID,
		Engine: types.EngineConfigSnapshot{
			Configurator: c.Options.Get(types.OptionConfigurator),
			GoBinary:     c.GoBinary,
			BasicEvents:  c.BasicEvents,
			Options:      options,
		},
		Selection: types.SelectionConfigSnapshot{
			Groups:         c.Options.Get(types.OptionGroups),
			ExcludedGroups: c.Options.Get(types.OptionExcludeGroups),
			MethodPattern:  c.MethodPattern,
		},
		Execution: types.ExecutionConfigSnapshot{
			RunInterval: c.RunInterval,
			RunOnce:     c.RunOnce,
		},
		Paths: types.PathsConfigSnapshot{
			WorkDir:    workDir,
			SourceDir:  c.SourceDir,
			ReportsDir: c.ReportsDir,
			Catalog:    c.CatalogFile,
			SuiteFiles: c.SuiteFiles,
		},
	}
}

func absPath(what, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s '%s': %w", what, path, err)
	}
	return abs, nil
}
