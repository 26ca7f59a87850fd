package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

func TestChain_Build(t *testing.T) {
	tests := []struct {
		name          string
		options       map[string]string
		methodPattern string
		wantNames     []string
		wantPrio      []int
	}{
		{
			name:      "no options",
			wantNames: nil,
		},
		{
			name:          "method pattern only",
			methodPattern: "TestFoo*",
			wantNames:     []string{MethodNameName},
			wantPrio:      []int{10000},
		},
		{
			name:      "include groups only",
			options:   map[string]string{types.OptionGroups: "fast"},
			wantNames: []string{GroupMatcherName},
			wantPrio:  []int{9999},
		},
		{
			name:      "exclude groups only",
			options:   map[string]string{types.OptionExcludeGroups: "slow"},
			wantNames: []string{GroupMatcherName},
			wantPrio:  []int{9999},
		},
		{
			name: "groups and method pattern",
			options: map[string]string{
				types.OptionGroups:        "fast",
				types.OptionExcludeGroups: "slow",
			},
			methodPattern: "TestFoo",
			wantNames:     []string{GroupMatcherName, MethodNameName},
			wantPrio:      []int{9999, 10000},
		},
		{
			name:          "blank values attach nothing",
			options:       map[string]string{types.OptionGroups: "  ", types.OptionExcludeGroups: ""},
			methodPattern: "\t",
			wantNames:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selectors, err := NewChain(nil).Build(types.NewOptions(tt.options), tt.methodPattern)
			require.NoError(t, err)

			var names []string
			var prios []int
			for _, s := range selectors {
				names = append(names, s.Name)
				prios = append(prios, s.Priority)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantPrio, prios)
		})
	}
}

func TestChain_Build_CarriesParameters(t *testing.T) {
	opts := types.NewOptions(map[string]string{types.OptionGroups: "db"})
	selectors, err := NewChain(nil).Build(opts, "Store#TestPut*")
	require.NoError(t, err)
	require.Len(t, selectors, 2)

	assert.Equal(t, "db", selectors[0].Param(ParamInclude))
	assert.Equal(t, "", selectors[0].Param(ParamExclude), "blank side means no constraint")
	assert.Equal(t, "Store#TestPut*", selectors[1].Param(ParamPattern))
}

func TestChain_Build_Failures(t *testing.T) {
	opts := types.NewOptions(map[string]string{types.OptionGroups: "fast"})

	t.Run("filter not registered", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(MethodNameName, NewMethodNameFilter)

		selectors, err := NewChain(reg).Build(opts, "TestFoo")
		require.Error(t, err)
		assert.Nil(t, selectors)
		assert.True(t, types.IsTestSetFailedError(err))
		assert.Contains(t, err.Error(), GroupMatcherName)
	})

	t.Run("factory returns error", func(t *testing.T) {
		cause := errors.New("incompatible parameters")
		reg := DefaultRegistry()
		reg.Register(GroupMatcherName, func(map[string]string) (Filter, error) {
			return nil, cause
		})

		_, err := NewChain(reg).Build(opts, "")
		require.Error(t, err)
		assert.True(t, types.IsTestSetFailedError(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("factory panics", func(t *testing.T) {
		reg := DefaultRegistry()
		reg.Register(MethodNameName, func(map[string]string) (Filter, error) {
			panic("boom")
		})

		_, err := NewChain(reg).Build(types.Options{}, "TestFoo")
		require.Error(t, err)
		assert.True(t, types.IsTestSetFailedError(err))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("invalid group expression", func(t *testing.T) {
		bad := types.NewOptions(map[string]string{types.OptionGroups: "fast &&"})
		_, err := NewChain(nil).Build(bad, "")
		require.Error(t, err)
		assert.True(t, types.IsTestSetFailedError(err))
	})
}

func TestRegistry_Pipeline_OrdersByPriority(t *testing.T) {
	var calls []string
	reg := NewRegistry()
	for _, name := range []string{"late", "early"} {
		name := name
		reg.Register(name, func(map[string]string) (Filter, error) {
			return FilterFunc(func(Method) bool {
				calls = append(calls, name)
				return true
			}), nil
		})
	}

	p, err := reg.Pipeline([]Selector{
		{Name: "late", Priority: 10000},
		{Name: "early", Priority: 9999},
	})
	require.NoError(t, err)
	assert.Equal(t, "early", p.Selectors()[0].Name)

	assert.True(t, p.Include(Method{Name: "TestX"}))
	assert.Equal(t, []string{"early", "late"}, calls)
}

func TestPipeline_StopsAtFirstRejection(t *testing.T) {
	reached := false
	reg := NewRegistry()
	reg.Register("reject", func(map[string]string) (Filter, error) {
		return FilterFunc(func(Method) bool { return false }), nil
	})
	reg.Register("final", func(map[string]string) (Filter, error) {
		return FilterFunc(func(Method) bool { reached = true; return true }), nil
	})

	p, err := reg.Pipeline([]Selector{{Name: "final", Priority: 2}, {Name: "reject", Priority: 1}})
	require.NoError(t, err)
	assert.False(t, p.Include(Method{Name: "TestX"}))
	assert.False(t, reached)
}

func TestPipeline_Apply(t *testing.T) {
	opts := types.NewOptions(map[string]string{types.OptionExcludeGroups: "slow"})
	selectors, err := NewChain(nil).Build(opts, "TestA*")
	require.NoError(t, err)

	p, err := DefaultRegistry().Pipeline(selectors)
	require.NoError(t, err)

	methods := []Method{
		{Class: "./pkg", Name: "TestAlpha"},
		{Class: "./pkg", Name: "TestAlphaSlow", Groups: []string{"slow"}},
		{Class: "./pkg", Name: "TestBeta"},
		{Class: "./pkg", Name: "TestAnother", Groups: []string{"fast"}},
	}
	kept := p.Apply(methods)
	require.Len(t, kept, 2)
	assert.Equal(t, "TestAlpha", kept[0].Name)
	assert.Equal(t, "TestAnother", kept[1].Name)
}
