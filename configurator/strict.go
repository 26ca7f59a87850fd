package configurator

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

var knownOptions = map[string]bool{
	types.OptionConfigurator:  true,
	types.OptionGroups:        true,
	types.OptionExcludeGroups: true,
	types.OptionParallel:      true,
	types.OptionThreadCount:   true,
	types.OptionTimeout:       true,
	types.OptionTags:          true,
	types.OptionRace:          true,
	types.OptionShort:         true,
	types.OptionFailFast:      true,
	types.OptionVerbose:       true,
}

var _ Configurator = (*Strict)(nil)

// Strict behaves like Default but rejects option keys it does not recognise
type Strict struct {
	*Default
}

func NewStrict(logger log.Logger) *Strict {
	return &Strict{Default: NewDefault(logger)}
}

func (s *Strict) ConfigureSuite(suite *plan.Suite, opts types.Options) error {
	if err := checkKnown(opts); err != nil {
		return err
	}
	return s.Default.ConfigureSuite(suite, opts)
}

func (s *Strict) ConfigureEngine(e engine.Engine, opts types.Options) error {
	if err := checkKnown(opts); err != nil {
		return err
	}
	return s.Default.ConfigureEngine(e, opts)
}

func checkKnown(opts types.Options) error {
	var unknown []string
	for _, key := range opts.Keys() {
		if knownOptions[key] || strings.HasPrefix(key, types.OptionParamPrefix) {
			continue
		}
		unknown = append(unknown, key)
	}
	if len(unknown) > 0 {
		return types.NewTestSetFailedError(
			fmt.Sprintf("unknown options: %s", strings.Join(unknown, ", ")), nil)
	}
	return nil
}
