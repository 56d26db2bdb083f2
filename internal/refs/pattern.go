package refs

import (
	"fmt"
	"regexp"
)

// Pattern is a regular expression that must match a whole ref name.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// CompilePattern compiles source anchored at both ends.
func CompilePattern(source string) (*Pattern, error) {
	re, err := regexp.Compile(`^(?:` + source + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", source, err)
	}
	return &Pattern{source: source, re: re}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(source string) *Pattern {
	p, err := CompilePattern(source)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as configured, without anchors.
func (p *Pattern) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.source
}

// Regexp returns the anchored expression.
func (p *Pattern) Regexp() *regexp.Regexp {
	if p == nil {
		return nil
	}
	return p.re
}

// Matches reports whether name matches. A nil pattern matches everything.
func (p *Pattern) Matches(name string) bool {
	if p == nil {
		return true
	}
	return p.re.MatchString(name)
}

// Groups returns the named capture groups in declaration order.
func (p *Pattern) Groups() []string {
	if p == nil {
		return nil
	}
	var names []string
	for _, n := range p.re.SubexpNames() {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// GroupValues returns the value of every named group for name. Groups that
// did not participate in the match, or all groups when name does not match,
// map to "".
func (p *Pattern) GroupValues(name string) map[string]string {
	if p == nil {
		return nil
	}
	values := make(map[string]string)
	sub := p.re.FindStringSubmatch(name)
	for i, n := range p.re.SubexpNames() {
		if n == "" {
			continue
		}
		if sub != nil && i < len(sub) {
			values[n] = sub[i]
		} else {
			values[n] = ""
		}
	}
	return values
}
