// Package refs selects the configured rule that applies to the current
// repository situation.
package refs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the type of ref a rule applies to.
type Kind string

// Kind values.
const (
	KindBranch Kind = "branch"
	KindTag    Kind = "tag"
	KindCommit Kind = "commit"
)

// ErrUnknownKind is returned for a rule whose kind is not branch or tag.
var ErrUnknownKind = errors.New("unknown ref type")

// ParseKind parses a configured rule kind case-insensitively. Only branch
// and tag rules can be configured; commit matches come from the fallback.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBranch, KindTag:
		return k, nil
	default:
		return Kind(s), fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Rule describes how to version a project for refs matching Pattern.
type Rule struct {
	Kind Kind
	// Pattern selects the ref names this rule applies to; nil matches all.
	Pattern *Pattern
	// Version is the version format; empty leaves versions untouched.
	Version string
	// Properties maps property names to property formats.
	Properties map[string]string
	// DescribeTagPattern restricts which tags describe may report.
	DescribeTagPattern *Pattern
	// UpdatePom requests overwriting the original descriptor; nil is unset.
	UpdatePom *bool
}

// Config is the ordered rule list plus the global fallback.
type Config struct {
	Rules                  []Rule
	ConsiderTagsOnBranches bool
	// Rev is the fallback rule used when no rule matches; nil disables it.
	Rev *Rule
}

// Match is the rule selected for a build together with the ref it matched.
type Match struct {
	Commit  string
	RefName string
	Rule    Rule
}

// NewMatch creates a match. Commit and ref name must be non-empty.
func NewMatch(commit, refName string, rule Rule) (*Match, error) {
	if commit == "" {
		return nil, errors.New("match requires a commit")
	}
	if refName == "" {
		return nil, errors.New("match requires a ref name")
	}
	return &Match{Commit: commit, RefName: refName, Rule: rule}, nil
}

// Kind returns the kind of the matched rule.
func (m *Match) Kind() Kind {
	return m.Rule.Kind
}
