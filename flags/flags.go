package flags

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-testbridge/configurator"
	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	opservice "github.com/ethereum-optimism/optimism/op-service"
	opflags "github.com/ethereum-optimism/optimism/op-service/flags"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_TESTBRIDGE"

var (
	Catalog = &cli.StringFlag{
		Name:    "catalog",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CATALOG"),
		Usage:   "Path to a class catalog file (eg. 'catalog.yaml')",
	}
	TestDir = &cli.StringFlag{
		Name:    "testdir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TESTDIR"),
		Usage:   "Path to the test directory. Without a catalog every test package below it is run.",
	}
	Suites = &cli.StringSliceFlag{
		Name:    "suites",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SUITES"),
		Usage:   "Suite descriptor files to run instead of catalog classes",
	}
	SourceDir = &cli.StringFlag{
		Name:    "source-dir",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SOURCE_DIR"),
		Usage:   "Directory go test runs in. Defaults to the test directory.",
	}
	ReportsDir = &cli.StringFlag{
		Name:    "reports-dir",
		Value:   "reports",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "REPORTS_DIR"),
		Usage:   "Directory raw engine output is written to, one subdirectory per run",
	}
	Configurator = &cli.StringFlag{
		Name:    "configurator",
		Value:   configurator.DefaultName,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CONFIGURATOR"),
		Usage:   "Engine configurator strategy (default, strict or noop)",
	}
	Groups = &cli.StringFlag{
		Name:    "groups",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GROUPS"),
		Usage:   "Group expression methods must match (eg. 'fast & !flaky')",
	}
	ExcludeGroups = &cli.StringFlag{
		Name:    "exclude-groups",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "EXCLUDE_GROUPS"),
		Usage:   "Group expression excluding matching methods",
	}
	Methods = &cli.StringFlag{
		Name:    "methods",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "METHODS"),
		Usage:   "Comma-separated method globs, optionally qualified as 'class#method'",
	}
	GoBinary = &cli.StringFlag{
		Name:    "go-binary",
		Value:   "go",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "GO_BINARY"),
		Usage:   "Path to the Go binary to use for running tests",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
		Usage:   "Interval between test runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Parallel = &cli.StringFlag{
		Name:    "parallel",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PARALLEL"),
		Usage: fmt.Sprintf("Suite parallel mode (%s, %s or %s)",
			engine.ParallelNone, engine.ParallelMethods, engine.ParallelClasses),
		Action: func(ctx *cli.Context, v string) error {
			return engine.ValidateParallelMode(strings.ToLower(v))
		},
	}
	ThreadCount = &cli.IntFlag{
		Name:    "threadcount",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "THREADCOUNT"),
		Usage:   "Number of concurrent workers (0 = auto-determine)",
	}
	Timeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   0,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TIMEOUT"),
		Usage:   "Timeout passed to each go test process (0 = go test default)",
	}
	Tags = &cli.StringFlag{
		Name:    "tags",
		Value:   "",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TAGS"),
		Usage:   "Comma-separated build tags",
	}
	Race = &cli.BoolFlag{
		Name:    "race",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RACE"),
		Usage:   "Run tests with the race detector",
	}
	Short = &cli.BoolFlag{
		Name:    "short",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SHORT"),
		Usage:   "Run tests in short mode",
	}
	FailFast = &cli.BoolFlag{
		Name:    "failfast",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "FAILFAST"),
		Usage:   "Stop each go test process after its first failure",
	}
	BasicEvents = &cli.BoolFlag{
		Name:    "basic-events",
		Value:   false,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BASIC_EVENTS"),
		Usage:   "Only report test and test set events, dropping package setup and teardown outcomes",
	}
	Option = &cli.StringSliceFlag{
		Name:    "option",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "OPTION"),
		Usage:   "Extra configurator option as key=value (eg. 'param.network=devnet'). May be repeated.",
	}
	ShowMethods = &cli.BoolFlag{
		Name:    "show-methods",
		Value:   true,
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "SHOW_METHODS"),
		Usage:   "Show individual methods in the results table",
	}
)

var requiredFlags []cli.Flag

var optionalFlags = []cli.Flag{
	Catalog,
	TestDir,
	Suites,
	SourceDir,
	ReportsDir,
	Configurator,
	Groups,
	ExcludeGroups,
	Methods,
	GoBinary,
	RunInterval,
	Parallel,
	ThreadCount,
	Timeout,
	Tags,
	Race,
	Short,
	FailFast,
	BasicEvents,
	Option,
	ShowMethods,
}
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

// CheckRequired makes sure the run has something to execute
func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	if ctx.String(Catalog.Name) == "" && ctx.String(TestDir.Name) == "" && len(ctx.StringSlice(Suites.Name)) == 0 {
		return fmt.Errorf("one of --%s, --%s or --%s is required", Catalog.Name, TestDir.Name, Suites.Name)
	}
	return opflags.CheckRequiredXor(ctx)
}
