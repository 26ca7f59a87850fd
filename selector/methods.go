package selector

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type methodPattern struct {
	class  string
	method string
}

// NewMethodNameFilter builds the method-name filter. The pattern is a
// comma-separated list of "method" or "Class#method" globs; a method is kept
// when any entry matches it. Class globs match either the full class name or
// its last path element.
func NewMethodNameFilter(params map[string]string) (Filter, error) {
	patterns, err := parseMethodPatterns(params[ParamPattern])
	if err != nil {
		return nil, err
	}
	return FilterFunc(func(m Method) bool {
		for _, p := range patterns {
			if p.matches(m) {
				return true
			}
		}
		return false
	}), nil
}

func parseMethodPatterns(raw string) ([]methodPattern, error) {
	var patterns []methodPattern
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var p methodPattern
		if class, method, ok := strings.Cut(entry, "#"); ok {
			p = methodPattern{class: strings.TrimSpace(class), method: strings.TrimSpace(method)}
		} else {
			p = methodPattern{method: entry}
		}
		if p.method == "" {
			p.method = "*"
		}
		for _, glob := range []string{p.class, p.method} {
			if glob != "" && !doublestar.ValidatePattern(glob) {
				return nil, fmt.Errorf("invalid method pattern %q", entry)
			}
		}
		patterns = append(patterns, p)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("method pattern %q has no entries", raw)
	}
	return patterns, nil
}

func (p methodPattern) matches(m Method) bool {
	if p.class != "" && !matchGlob(p.class, m.Class) && !matchGlob(p.class, path.Base(m.Class)) {
		return false
	}
	return matchGlob(p.method, m.Name)
}

func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
