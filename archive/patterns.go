package archive

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchAll is the pattern that matches every entry name.
const MatchAll = ".*"

// All is the Patterns that matches every entry.
var All = MustPatterns(MatchAll)

// Patterns is an ordered set of regular expressions matched against entry names.
//
// A name matches if any of the expressions matches anywhere in it; anchor the expression with ^ and $ to require a
// full match. An empty set matches nothing, while a nil *Patterns matches everything.
type Patterns struct {
	res []*regexp.Regexp
}

// NewPatterns compiles the given regular expressions.
func NewPatterns(exprs ...string) (*Patterns, error) {
	p := &Patterns{res: make([]*regexp.Regexp, 0, len(exprs))}
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf(`compile pattern "%s" error: %w`, expr, err)
		}

		p.res = append(p.res, re)
	}

	return p, nil
}

// MustPatterns is like NewPatterns but panics if any expression cannot be compiled.
func MustPatterns(exprs ...string) *Patterns {
	p, err := NewPatterns(exprs...)
	if err != nil {
		panic(err)
	}

	return p
}

// Match returns true if any of the expressions matches name.
func (p *Patterns) Match(name string) bool {
	if p == nil {
		return true
	}

	for _, re := range p.res {
		if re.MatchString(name) {
			return true
		}
	}

	return false
}

func (p *Patterns) String() string {
	if p == nil {
		return MatchAll
	}

	exprs := make([]string, len(p.res))
	for i, re := range p.res {
		exprs[i] = re.String()
	}

	return strings.Join(exprs, ", ")
}
