package types

import (
	"sort"
	"strings"
)

// Option keys consumed by the bridge core
const (
	OptionConfigurator  = "configurator"
	OptionGroups        = "groups"
	OptionExcludeGroups = "excludegroups"

	// Keys understood by the built-in configurator strategies
	OptionParallel    = "parallel"
	OptionThreadCount = "threadcount"
	OptionTimeout     = "timeout"
	OptionTags        = "tags"
	OptionRace        = "race"
	OptionShort       = "short"
	OptionFailFast    = "failfast"
	// OptionVerbose only reaches engines configured outside the engine
	// runner, which always resets verbosity to 0 before a run
	OptionVerbose = "verbose"

	// OptionParamPrefix marks options copied into suite parameters
	OptionParamPrefix = "param."
)

// Options is an immutable set of caller configuration options.
// The zero value is an empty set.
type Options struct {
	values map[string]string
}

// NewOptions copies values into a new Options set
func NewOptions(values map[string]string) Options {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Options{values: copied}
}

// Lookup returns the value stored under key and whether it was present
func (o Options) Lookup(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Get returns the value stored under key, or "" if absent
func (o Options) Get(key string) string {
	return o.values[key]
}

// NonBlank returns the value stored under key if it contains anything but whitespace
func (o Options) NonBlank(key string) (string, bool) {
	v, ok := o.values[key]
	if !ok || IsBlank(v) {
		return "", false
	}
	return v, true
}

// Keys returns the option keys in sorted order
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of options in the set
func (o Options) Len() int {
	return len(o.values)
}

// With returns a copy of the set with key set to value
func (o Options) With(key, value string) Options {
	next := NewOptions(o.values)
	next.values[key] = value
	return next
}

// IsBlank reports whether s is empty or only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
