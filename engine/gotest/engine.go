// Package gotest implements engine.Engine on top of the Go toolchain. A class
// is a Go package and a method is a top-level test function in it; every
// class of a test node is run as one go test -json process.
package gotest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/testlist"
)

var (
	_ engine.Engine               = (*Engine)(nil)
	_ engine.ConfigurationEmitter = (*Engine)(nil)
)

// Invocation is one go test process
type Invocation struct {
	Dir    string
	Binary string
	Args   []string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// ExecFunc runs an invocation to completion
type ExecFunc func(ctx context.Context, inv Invocation) error

// MethodLister lists the test functions of a class
type MethodLister func(class string, sourceDir string) ([]testlist.TestFunction, error)

// Config holds configuration for creating a new engine
type Config struct {
	Log      log.Logger
	WorkDir  string
	GoBinary string
	// Selectors resolves the selectors attached to test nodes
	Selectors *selector.Registry
	// BasicEvents turns configuration-method events off
	BasicEvents bool
	Exec        ExecFunc
	Methods     MethodLister
}

// Engine runs plans with go test
type Engine struct {
	cfg        Config
	log        log.Logger
	tracer     trace.Tracer
	settings   engine.Settings
	dispatcher *engine.Dispatcher

	outputDir  string
	sourcePath string
	suites     []*plan.Suite
	suiteFiles []string
}

// New creates a new engine
func New(cfg Config) (*Engine, error) {
	if cfg.WorkDir == "" {
		return nil, fmt.Errorf("work directory is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.GoBinary == "" {
		cfg.GoBinary = DefaultGoBinary
	}
	if cfg.Selectors == nil {
		cfg.Selectors = selector.DefaultRegistry()
	}
	if cfg.Exec == nil {
		cfg.Exec = execCommand
	}
	if cfg.Methods == nil {
		cfg.Methods = testlist.FindTests
	}
	return &Engine{
		cfg:        cfg,
		log:        cfg.Log,
		tracer:     otel.Tracer("gotest engine"),
		dispatcher: engine.NewDispatcher(!cfg.BasicEvents),
	}, nil
}

func (e *Engine) EmitsConfigurationEvents() bool {
	return !e.cfg.BasicEvents
}

func (e *Engine) Settings() *engine.Settings {
	return &e.settings
}

func (e *Engine) SetVerbose(level int) {
	e.settings.Verbose = level
}

func (e *Engine) AddListener(l engine.Listener) {
	e.dispatcher.Add(l)
}

func (e *Engine) SetOutputDirectory(dir string) {
	e.outputDir = dir
}

func (e *Engine) SetSourcePath(path string) {
	e.sourcePath = path
}

func (e *Engine) SetSuites(suites []*plan.Suite) {
	e.suites = suites
}

func (e *Engine) SetSuiteFiles(paths []string) {
	e.suiteFiles = paths
}

// sourceDir is where packages are listed and go test is run
func (e *Engine) sourceDir() string {
	if e.sourcePath != "" {
		return e.sourcePath
	}
	return e.cfg.WorkDir
}

// Run executes every suite in order. Test failures are reported to
// listeners; only faults that prevent go test from running are returned.
func (e *Engine) Run(ctx context.Context) error {
	suites := e.suites
	if len(e.suiteFiles) > 0 {
		loaded, err := LoadSuiteFiles(e.suiteFiles)
		if err != nil {
			return err
		}
		if len(e.settings.Selectors) > 0 {
			for _, suite := range loaded {
				for _, test := range suite.Tests {
					test.Selectors = append(append([]selector.Selector(nil), e.settings.Selectors...), test.Selectors...)
				}
			}
		}
		suites = append(append([]*plan.Suite(nil), suites...), loaded...)
	}

	store := newJSONStore(e.outputDir)
	for _, suite := range suites {
		for _, test := range suite.Tests {
			if err := e.runTest(ctx, store, suite, test); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) runTest(ctx context.Context, store *jsonStore, suite *plan.Suite, test *plan.Test) error {
	ctx, span := e.tracer.Start(ctx, fmt.Sprintf("test %s/%s", suite.Name, test.Name))
	defer span.End()

	pipeline, err := e.cfg.Selectors.Pipeline(test.Selectors)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("suite %q test %q: %w", suite.Name, test.Name, err)
	}

	tc := &engine.TestContext{Suite: suite.Name, Test: test.Name, Start: time.Now()}
	counter := &setCounter{tc: tc}
	e.dispatcher.Start(tc)

	var runErr error
	if suite.Parallel == engine.ParallelClasses && len(test.Classes) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.threads(suite))
		for _, class := range test.Classes {
			g.Go(func() error {
				return e.runClass(gctx, store, suite, test, class, pipeline, counter)
			})
		}
		runErr = g.Wait()
	} else {
		for _, class := range test.Classes {
			if runErr = e.runClass(ctx, store, suite, test, class, pipeline, counter); runErr != nil {
				break
			}
		}
	}

	counter.mu.Lock()
	tc.End = time.Now()
	counter.mu.Unlock()
	e.dispatcher.Finish(tc)

	span.SetAttributes(
		attribute.Int("passed", tc.Passed),
		attribute.Int("failed", tc.Failed),
		attribute.Int("skipped", tc.Skipped),
	)
	if runErr != nil {
		span.SetStatus(codes.Error, runErr.Error())
	}
	return runErr
}

func (e *Engine) runClass(ctx context.Context, store *jsonStore, suite *plan.Suite, test *plan.Test,
	class string, pipeline *selector.Pipeline, counter *setCounter) error {

	run := newClassRun(suite.Name, test.Name, class, nil, e.dispatcher, counter)

	funcs, err := e.cfg.Methods(class, e.sourceDir())
	if err != nil {
		e.log.Warn("Failed to list tests", "class", class, "err", err)
		run.pkgOutput.WriteString(fmt.Sprintf("listing tests: %v", err))
		run.buildFailed = true
		run.finish(true)
		return nil
	}

	methods := make([]selector.Method, 0, len(funcs))
	groups := make(map[string][]string, len(funcs))
	for _, f := range funcs {
		methods = append(methods, selector.Method{Class: class, Name: f.Name, Groups: f.Groups})
		groups[f.Name] = f.Groups
	}
	run.groups = groups

	selected := pipeline.Apply(methods)
	if len(selected) == 0 {
		e.log.Debug("No methods selected", "class", class, "suite", suite.Name, "test", test.Name,
			"available", len(methods))
		return nil
	}
	names := make([]string, len(selected))
	for i, m := range selected {
		names[i] = m.Name
	}

	raw, rawPath, err := store.Create(suite.Name, test.Name, class)
	if err != nil {
		return err
	}
	defer raw.Close()

	stderr := newTailBuffer(0)
	inv := Invocation{
		Dir:    e.sourceDir(),
		Binary: e.cfg.GoBinary,
		Args:   e.buildTestArgs(suite, class, names),
		Env:    e.buildEnv(ctx, suite, test),
		Stderr: stderr,
	}

	pr, pw := io.Pipe()
	inv.Stdout = io.MultiWriter(pw, raw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, min(64*1024, maxEventLineSize)), maxEventLineSize)
		for scanner.Scan() {
			run.handleLine(scanner.Bytes())
		}
		if err := scanner.Err(); err != nil {
			e.log.Warn("Failed to read go test output, remaining events are lost",
				"class", class, "suite", suite.Name, "test", test.Name, "err", err)
		}
		// drain so the writer never blocks if scanning stopped early
		_, _ = io.Copy(io.Discard, pr)
	}()

	e.log.Debug("Running class", "class", class, "suite", suite.Name, "test", test.Name, "methods", len(names), "raw", rawPath)
	execErr := e.cfg.Exec(ctx, inv)
	_ = pw.Close()
	wg.Wait()

	var exitErr *exec.ExitError
	switch {
	case execErr == nil:
		run.finish(false)
	case errors.As(execErr, &exitErr):
		if stderr.Len() > 0 {
			run.pkgOutput.WriteString(stderr.String())
		}
		run.finish(true)
	default:
		return fmt.Errorf("running go test for %s: %w", class, execErr)
	}
	return nil
}

func (e *Engine) threads(suite *plan.Suite) int {
	if suite.ThreadCount > 0 {
		return suite.ThreadCount
	}
	if e.settings.ThreadCount > 0 {
		return e.settings.ThreadCount
	}
	return min(runtime.NumCPU(), MaxReasonableConcurrency)
}

func (e *Engine) buildTestArgs(suite *plan.Suite, class string, methods []string) []string {
	args := []string{TestCommand, JSONFlag, VerboseFlag, CountFlag, DisableCache}

	switch suite.Parallel {
	case engine.ParallelMethods:
		args = append(args, ParallelFlag, strconv.Itoa(e.threads(suite)))
	case engine.ParallelNone:
		args = append(args, ParallelFlag, "1")
	}
	if e.settings.Timeout > 0 {
		args = append(args, TimeoutFlag, e.settings.Timeout.String())
	}
	if len(e.settings.Tags) > 0 {
		args = append(args, TagsFlag, strings.Join(e.settings.Tags, ","))
	}
	if e.settings.Race {
		args = append(args, RaceFlag)
	}
	if e.settings.Short {
		args = append(args, ShortFlag)
	}
	if e.settings.FailFast {
		args = append(args, FailFastFlag)
	}

	args = append(args, RunFlag, runExpression(methods), class)
	return args
}

func (e *Engine) buildEnv(ctx context.Context, suite *plan.Suite, test *plan.Test) []string {
	env := append(os.Environ(),
		EnvSuite+"="+suite.Name,
		EnvTest+"="+test.Name,
	)
	for k, v := range suite.Parameters {
		env = append(env, EnvParamPrefix+envName(k)+"="+v)
	}
	return telemetry.InstrumentEnvironment(ctx, env)
}

// runExpression builds a -run expression matching exactly the given top-level tests
func runExpression(methods []string) string {
	quoted := make([]string, len(methods))
	for i, m := range methods {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}

func envName(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		default:
			return '_'
		}
	}, key)
}

func execCommand(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	return cmd.Run()
}
