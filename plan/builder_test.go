package plan

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

// recordingConfigurer counts suite configurations per suite name
type recordingConfigurer struct {
	calls []string
	err   error
}

func (c *recordingConfigurer) ConfigureSuite(suite *Suite, opts types.Options) error {
	c.calls = append(c.calls, suite.Name)
	if c.err != nil {
		return c.err
	}
	suite.Parameters["configured"] = "true"
	return nil
}

func newTestBuilder(t *testing.T, cfg Config) *Builder {
	t.Helper()
	if cfg.Log == nil {
		cfg.Log = log.NewLogger(log.DiscardHandler())
	}
	b, err := NewBuilder(cfg)
	require.NoError(t, err)
	return b
}

func classWith(name, suite, test string) *types.ClassDescriptor {
	return &types.ClassDescriptor{Name: name, Metadata: &types.ClassMetadata{SuiteName: suite, TestName: test}}
}

func TestBuilder_EndToEndScenario(t *testing.T) {
	cfg := &recordingConfigurer{}
	b := newTestBuilder(t, Config{Configurer: cfg})

	classes := []*types.ClassDescriptor{
		classWith("A", "S1", "T1"),
		{Name: "Plain"},
		classWith("B", "S1", "T1"),
	}

	p, err := b.Build(classes)
	require.NoError(t, err)
	require.Len(t, p.Suites, 2)

	assert.Equal(t, "S1", p.Suites[0].Name)
	assert.Equal(t, types.DefaultSuiteName, p.Suites[1].Name)

	require.Len(t, p.Suites[0].Tests, 1)
	assert.Equal(t, "T1", p.Suites[0].Tests[0].Name)
	assert.Equal(t, []string{"A", "B"}, p.Suites[0].Tests[0].Classes)

	require.Len(t, p.Suites[1].Tests, 1)
	assert.Equal(t, types.DefaultTestName, p.Suites[1].Tests[0].Name)
	assert.Equal(t, []string{"Plain"}, p.Suites[1].Tests[0].Classes)

	assert.Equal(t, []string{"S1", types.DefaultSuiteName}, cfg.calls)
	assert.Equal(t, 3, p.ClassCount())
}

func TestBuilder_ConfiguresEachSuiteOnce(t *testing.T) {
	cfg := &recordingConfigurer{}
	b := newTestBuilder(t, Config{Configurer: cfg})

	p, err := b.Build([]*types.ClassDescriptor{
		classWith("A", "S1", "T1"),
		classWith("B", "S2", "T1"),
		classWith("C", "S1", "T2"),
		classWith("D", "S2", "T1"),
		classWith("E", "S1", "T1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"S1", "S2"}, cfg.calls)
	for _, s := range p.Suites {
		assert.Equal(t, "true", s.Parameters["configured"])
	}

	s1 := p.Suite("S1")
	require.NotNil(t, s1)
	require.Len(t, s1.Tests, 2)
	assert.Equal(t, []string{"A", "E"}, s1.Test("T1").Classes)
	assert.Equal(t, []string{"C"}, s1.Test("T2").Classes)
	assert.Equal(t, []string{"B", "D"}, p.Suite("S2").Test("T1").Classes)
}

func TestBuilder_AttachesSelectorsPerTest(t *testing.T) {
	opts := types.NewOptions(map[string]string{types.OptionGroups: "fast"})
	selectors, err := selector.NewChain(nil).Build(opts, "TestFoo*")
	require.NoError(t, err)

	b := newTestBuilder(t, Config{Configurer: &recordingConfigurer{}, Options: opts, Selectors: selectors})
	p, err := b.Build([]*types.ClassDescriptor{
		classWith("A", "S1", "T1"),
		classWith("B", "S1", "T1"),
		classWith("C", "S1", "T2"),
	})
	require.NoError(t, err)

	for _, test := range p.Suite("S1").Tests {
		require.Len(t, test.Selectors, 2, "test %s", test.Name)
		assert.Equal(t, selector.GroupMatcherName, test.Selectors[0].Name)
		assert.Equal(t, selector.MethodNameName, test.Selectors[1].Name)
	}

	// Each test owns its selector slice
	p.Suite("S1").Tests[0].Selectors[0].Priority = 1
	assert.Equal(t, selector.GroupMatcherPriority, p.Suite("S1").Tests[1].Selectors[0].Priority)
}

func TestBuilder_NoSelectors(t *testing.T) {
	b := newTestBuilder(t, Config{Configurer: &recordingConfigurer{}})
	p, err := b.Build([]*types.ClassDescriptor{{Name: "A"}})
	require.NoError(t, err)
	assert.Empty(t, p.Suites[0].Tests[0].Selectors)
}

func TestBuilder_EmptyInput(t *testing.T) {
	cfg := &recordingConfigurer{}
	b := newTestBuilder(t, Config{Configurer: cfg})

	p, err := b.Build(nil)
	require.NoError(t, err)
	assert.Empty(t, p.Suites)
	assert.Empty(t, cfg.calls)
}

func TestBuilder_ConfigurerFailureAbortsBuild(t *testing.T) {
	cause := errors.New("bad parallel mode")
	b := newTestBuilder(t, Config{Configurer: &recordingConfigurer{err: cause}})

	p, err := b.Build([]*types.ClassDescriptor{{Name: "A"}})
	require.Error(t, err)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, cause)
}

func TestBuilder_MetadataUnavailable(t *testing.T) {
	b := newTestBuilder(t, Config{
		Configurer: &recordingConfigurer{},
		Resolver:   NewResolver(func() bool { return false }),
	})
	p, err := b.Build([]*types.ClassDescriptor{classWith("A", "S1", "T1")})
	require.NoError(t, err)
	require.Len(t, p.Suites, 1)
	assert.Equal(t, types.DefaultSuiteName, p.Suites[0].Name)
}

func TestNewBuilder_RequiresConfigurer(t *testing.T) {
	_, err := NewBuilder(Config{})
	require.Error(t, err)
}

func TestSuite_AddTest(t *testing.T) {
	s := NewSuite("S")
	first, created := s.AddTest("T", nil)
	require.True(t, created)
	again, created := s.AddTest("T", nil)
	assert.False(t, created)
	assert.Same(t, first, again)
	assert.Len(t, s.Tests, 1)
}
