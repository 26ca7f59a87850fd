package configurator

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-testbridge/engine/enginetest"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func TestRegistryNew(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{DefaultName, NoopName, StrictName}, reg.Names())

	tests := []struct {
		name     string
		strategy string
		wantType any
	}{
		{name: "default", strategy: "default", wantType: &Default{}},
		{name: "noop", strategy: "noop", wantType: Noop{}},
		{name: "strict", strategy: "strict", wantType: &Strict{}},
		{name: "surrounding whitespace", strategy: "  default ", wantType: &Default{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := reg.New(tt.strategy, testLogger())
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, c)
		})
	}
}

func TestRegistryNewFailures(t *testing.T) {
	reg := DefaultRegistry()
	reg.Register("broken", func(log.Logger) (Configurator, error) {
		return nil, errors.New("missing dependency")
	})
	reg.Register("panics", func(log.Logger) (Configurator, error) {
		panic("bad constructor")
	})
	reg.Register("empty", func(log.Logger) (Configurator, error) {
		return nil, nil
	})

	tests := []struct {
		name     string
		strategy string
		contains string
	}{
		{name: "blank", strategy: "  ", contains: "no configurator specified"},
		{name: "unknown", strategy: "fancy", contains: `unknown configurator "fancy"`},
		{name: "failing constructor", strategy: "broken", contains: "missing dependency"},
		{name: "panicking constructor", strategy: "panics", contains: "bad constructor"},
		{name: "nil configurator", strategy: "empty", contains: "returned no configurator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := reg.New(tt.strategy, testLogger())
			assert.Nil(t, c)
			require.Error(t, err)
			assert.True(t, types.IsFatalError(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDefaultConfigureSuite(t *testing.T) {
	d := NewDefault(testLogger())

	t.Run("applies options", func(t *testing.T) {
		suite := plan.NewSuite("S")
		opts := types.NewOptions(map[string]string{
			types.OptionParallel:    "Classes",
			types.OptionThreadCount: "4",
			"param.network":         "devnet",
			"unrelated":             "x",
		})
		require.NoError(t, d.ConfigureSuite(suite, opts))
		assert.Equal(t, "classes", suite.Parallel)
		assert.Equal(t, 4, suite.ThreadCount)
		assert.Equal(t, map[string]string{"network": "devnet"}, suite.Parameters)
	})

	t.Run("blank options leave suite untouched", func(t *testing.T) {
		suite := plan.NewSuite("S")
		opts := types.NewOptions(map[string]string{types.OptionParallel: " ", types.OptionThreadCount: ""})
		require.NoError(t, d.ConfigureSuite(suite, opts))
		assert.Empty(t, suite.Parallel)
		assert.Zero(t, suite.ThreadCount)
	})

	invalid := map[string]map[string]string{
		"bad parallel mode": {types.OptionParallel: "sometimes"},
		"bad thread count":  {types.OptionThreadCount: "many"},
		"zero thread count": {types.OptionThreadCount: "0"},
		"empty param name":  {"param.": "x"},
	}
	for name, values := range invalid {
		t.Run(name, func(t *testing.T) {
			err := d.ConfigureSuite(plan.NewSuite("S"), types.NewOptions(values))
			require.Error(t, err)
			assert.True(t, types.IsTestSetFailedError(err))
		})
	}
}

func TestDefaultConfigureEngine(t *testing.T) {
	d := NewDefault(testLogger())

	t.Run("applies options", func(t *testing.T) {
		eng := enginetest.New(false)
		opts := types.NewOptions(map[string]string{
			types.OptionThreadCount: "8",
			types.OptionTimeout:     "90s",
			types.OptionTags:        "integration, e2e,",
			types.OptionRace:        "true",
			types.OptionShort:       "1",
			types.OptionFailFast:    "false",
			types.OptionVerbose:     "2",
		})
		require.NoError(t, d.ConfigureEngine(eng, opts))
		s := eng.Settings()
		assert.Equal(t, 8, s.ThreadCount)
		assert.Equal(t, 90*time.Second, s.Timeout)
		assert.Equal(t, []string{"integration", "e2e"}, s.Tags)
		assert.True(t, s.Race)
		assert.True(t, s.Short)
		assert.False(t, s.FailFast)
		assert.Equal(t, 2, s.Verbose)
	})

	t.Run("no options", func(t *testing.T) {
		eng := enginetest.New(false)
		require.NoError(t, d.ConfigureEngine(eng, types.Options{}))
		assert.Equal(t, 0, eng.Settings().ThreadCount)
		assert.Empty(t, eng.Settings().Selectors)
		assert.Empty(t, eng.VerboseCalls)
	})

	t.Run("group options become engine selectors", func(t *testing.T) {
		eng := enginetest.New(false)
		opts := types.NewOptions(map[string]string{
			types.OptionExcludeGroups: "slow",
		})
		require.NoError(t, d.ConfigureEngine(eng, opts))
		require.Len(t, eng.Settings().Selectors, 1)
		sel := eng.Settings().Selectors[0]
		assert.Equal(t, selector.GroupMatcherName, sel.Name)
		assert.Equal(t, selector.GroupMatcherPriority, sel.Priority)
		assert.Equal(t, "slow", sel.Param(selector.ParamExclude))
		assert.Empty(t, sel.Param(selector.ParamInclude))
	})

	invalid := map[string]map[string]string{
		"bad timeout":      {types.OptionTimeout: "soon"},
		"negative timeout": {types.OptionTimeout: "-1s"},
		"bad bool":         {types.OptionRace: "maybe"},
		"bad verbose":      {types.OptionVerbose: "-1"},
		"bad thread count": {types.OptionThreadCount: "x"},
		"bad groups":       {types.OptionGroups: "fast &&"},
	}
	for name, values := range invalid {
		t.Run(name, func(t *testing.T) {
			err := d.ConfigureEngine(enginetest.New(false), types.NewOptions(values))
			require.Error(t, err)
			assert.True(t, types.IsTestSetFailedError(err))
		})
	}
}

func TestNoop(t *testing.T) {
	suite := plan.NewSuite("S")
	eng := enginetest.New(false)
	opts := types.NewOptions(map[string]string{types.OptionParallel: "bogus", types.OptionVerbose: "3"})

	require.NoError(t, Noop{}.ConfigureSuite(suite, opts))
	require.NoError(t, Noop{}.ConfigureEngine(eng, opts))
	assert.Empty(t, suite.Parallel)
	assert.Empty(t, eng.Calls)
}

func TestStrict(t *testing.T) {
	s := NewStrict(testLogger())

	known := types.NewOptions(map[string]string{
		types.OptionConfigurator: StrictName,
		types.OptionGroups:       "fast",
		types.OptionParallel:     "methods",
		"param.chain":            "l2",
	})
	suite := plan.NewSuite("S")
	require.NoError(t, s.ConfigureSuite(suite, known))
	assert.Equal(t, "methods", suite.Parallel)
	require.NoError(t, s.ConfigureEngine(enginetest.New(false), known))

	unknown := known.With("colour", "blue").With("aardvark", "1")
	err := s.ConfigureSuite(plan.NewSuite("S"), unknown)
	require.Error(t, err)
	assert.True(t, types.IsTestSetFailedError(err))
	assert.Contains(t, err.Error(), "unknown options: aardvark, colour")

	err = s.ConfigureEngine(enginetest.New(false), unknown)
	assert.True(t, types.IsTestSetFailedError(err))
}
