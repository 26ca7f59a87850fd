package selector

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// NewGroupFilter builds the group-matching filter. A method is kept when it
// matches the include expression (if set) and does not match the exclude
// expression (if set).
func NewGroupFilter(params map[string]string) (Filter, error) {
	var include, exclude GroupExpr
	var err error

	if expr := params[ParamInclude]; strings.TrimSpace(expr) != "" {
		if include, err = ParseGroupExpression(expr); err != nil {
			return nil, fmt.Errorf("include groups: %w", err)
		}
	}
	if expr := params[ParamExclude]; strings.TrimSpace(expr) != "" {
		if exclude, err = ParseGroupExpression(expr); err != nil {
			return nil, fmt.Errorf("exclude groups: %w", err)
		}
	}
	if include == nil && exclude == nil {
		return nil, fmt.Errorf("group filter needs an include or exclude expression")
	}

	return FilterFunc(func(m Method) bool {
		if include != nil && !include.Matches(m.Groups) {
			return false
		}
		if exclude != nil && exclude.Matches(m.Groups) {
			return false
		}
		return true
	}), nil
}

// GroupExpr is a parsed group expression
type GroupExpr interface {
	Matches(groups []string) bool
}

type groupName string

func (g groupName) Matches(groups []string) bool {
	for _, group := range groups {
		if ok, _ := doublestar.Match(string(g), group); ok {
			return true
		}
	}
	return false
}

type notExpr struct{ inner GroupExpr }

func (n notExpr) Matches(groups []string) bool { return !n.inner.Matches(groups) }

type andExpr []GroupExpr

func (a andExpr) Matches(groups []string) bool {
	for _, e := range a {
		if !e.Matches(groups) {
			return false
		}
	}
	return true
}

type orExpr []GroupExpr

func (o orExpr) Matches(groups []string) bool {
	for _, e := range o {
		if e.Matches(groups) {
			return true
		}
	}
	return false
}

// ParseGroupExpression parses a group expression such as "fast, db && !slow".
//
//	or    = and { ("," | "||" | "OR") and }
//	and   = unary { ("&&" | "AND") unary }
//	unary = ("!" | "NOT") unary | "(" or ")" | name
//
// Names are glob patterns matched against each group of a method.
func ParseGroupExpression(expr string) (GroupExpr, error) {
	toks, err := tokenizeGroups(expr)
	if err != nil {
		return nil, err
	}
	p := &groupParser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected %q at position %d in %q", p.toks[p.pos], p.pos, expr)
	}
	return e, nil
}

const (
	tokOr  = "||"
	tokAnd = "&&"
	tokNot = "!"
)

func tokenizeGroups(expr string) ([]string, error) {
	var toks []string
	rs := []rune(expr)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == ',':
			toks = append(toks, tokOr)
			i++
		case r == '(' || r == ')':
			toks = append(toks, string(r))
			i++
		case r == '!':
			toks = append(toks, tokNot)
			i++
		case r == '&' || r == '|':
			if i+1 >= len(rs) || rs[i+1] != r {
				return nil, fmt.Errorf("single %q in %q, expected %q", r, expr, string([]rune{r, r}))
			}
			toks = append(toks, string([]rune{r, r}))
			i += 2
		default:
			start := i
			for i < len(rs) && !unicode.IsSpace(rs[i]) && !strings.ContainsRune(",()!&|", rs[i]) {
				i++
			}
			word := string(rs[start:i])
			switch word {
			case "OR":
				toks = append(toks, tokOr)
			case "AND":
				toks = append(toks, tokAnd)
			case "NOT":
				toks = append(toks, tokNot)
			default:
				if !doublestar.ValidatePattern(word) {
					return nil, fmt.Errorf("invalid group pattern %q", word)
				}
				toks = append(toks, word)
			}
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty group expression")
	}
	return toks, nil
}

type groupParser struct {
	toks []string
	pos  int
}

func (p *groupParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *groupParser) parseOr() (GroupExpr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := orExpr{first}
	for p.peek() == tokOr {
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *groupParser) parseAnd() (GroupExpr, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	terms := andExpr{first}
	for p.peek() == tokAnd {
		p.pos++
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *groupParser) parseUnary() (GroupExpr, error) {
	switch tok := p.peek(); tok {
	case "":
		return nil, fmt.Errorf("unexpected end of group expression")
	case tokNot:
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner: inner}, nil
	case "(":
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case ")", tokOr, tokAnd:
		return nil, fmt.Errorf("unexpected %q", tok)
	default:
		p.pos++
		return groupName(tok), nil
	}
}
