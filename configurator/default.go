package configurator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-testbridge/engine"
	"github.com/ethereum-optimism/infra/op-testbridge/plan"
	"github.com/ethereum-optimism/infra/op-testbridge/selector"
	"github.com/ethereum-optimism/infra/op-testbridge/types"
)

var _ Configurator = (*Default)(nil)

// Default maps the well-known option keys onto suite and engine settings.
// Absent or blank options leave the corresponding setting untouched.
type Default struct {
	log log.Logger
}

func NewDefault(logger log.Logger) *Default {
	if logger == nil {
		logger = log.New()
	}
	return &Default{log: logger}
}

func (d *Default) ConfigureSuite(suite *plan.Suite, opts types.Options) error {
	if v, ok := opts.NonBlank(types.OptionParallel); ok {
		mode := strings.ToLower(strings.TrimSpace(v))
		if err := engine.ValidateParallelMode(mode); err != nil {
			return optionError(types.OptionParallel, v, err)
		}
		suite.Parallel = mode
	}
	if v, ok := opts.NonBlank(types.OptionThreadCount); ok {
		n, err := parsePositive(v)
		if err != nil {
			return optionError(types.OptionThreadCount, v, err)
		}
		suite.ThreadCount = n
	}
	for _, key := range opts.Keys() {
		if !strings.HasPrefix(key, types.OptionParamPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, types.OptionParamPrefix)
		if name == "" {
			return optionError(key, opts.Get(key), fmt.Errorf("parameter name is empty"))
		}
		suite.Parameters[name] = opts.Get(key)
	}
	d.log.Debug("Configured suite", "suite", suite.Name, "parallel", suite.Parallel,
		"threadcount", suite.ThreadCount, "parameters", len(suite.Parameters))
	return nil
}

func (d *Default) ConfigureEngine(e engine.Engine, opts types.Options) error {
	settings := e.Settings()
	if v, ok := opts.NonBlank(types.OptionThreadCount); ok {
		n, err := parsePositive(v)
		if err != nil {
			return optionError(types.OptionThreadCount, v, err)
		}
		settings.ThreadCount = n
	}
	if v, ok := opts.NonBlank(types.OptionTimeout); ok {
		timeout, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return optionError(types.OptionTimeout, v, err)
		}
		if timeout < 0 {
			return optionError(types.OptionTimeout, v, fmt.Errorf("must not be negative"))
		}
		settings.Timeout = timeout
	}
	if v, ok := opts.NonBlank(types.OptionTags); ok {
		settings.Tags = splitList(v)
	}
	for key, target := range map[string]*bool{
		types.OptionRace:     &settings.Race,
		types.OptionShort:    &settings.Short,
		types.OptionFailFast: &settings.FailFast,
	} {
		v, ok := opts.NonBlank(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return optionError(key, v, err)
		}
		*target = b
	}
	if s, ok := selector.GroupSelector(opts.Get(types.OptionGroups), opts.Get(types.OptionExcludeGroups)); ok {
		if _, err := selector.NewGroupFilter(s.Params); err != nil {
			return types.NewTestSetFailedError(err.Error(), err)
		}
		settings.Selectors = []selector.Selector{s}
	}
	if v, ok := opts.NonBlank(types.OptionVerbose); ok {
		level, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || level < 0 {
			return optionError(types.OptionVerbose, v, fmt.Errorf("must be a non-negative integer"))
		}
		e.SetVerbose(level)
	}
	d.log.Debug("Configured engine", "threadcount", settings.ThreadCount, "timeout", settings.Timeout,
		"tags", settings.Tags, "race", settings.Race, "short", settings.Short, "failfast", settings.FailFast,
		"selectors", len(settings.Selectors))
	return nil
}

func optionError(key, value string, cause error) error {
	return types.NewTestSetFailedError(fmt.Sprintf("invalid value %q for option %q", value, key), cause)
}

func parsePositive(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
