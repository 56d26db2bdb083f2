package refs

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/leapstack-labs/gitver/internal/git"
)

// Situation is the repository state a rule list is resolved against.
type Situation interface {
	HeadCommit() string
	IsDetached() bool
	BranchName() string
	TagNames() []string
}

// Resolve returns the first rule, in declared order, that matches the
// situation. Tag rules only apply to a detached HEAD unless tags on branches
// are considered; among several tags the lowest by version order wins.
// When nothing matches the Rev fallback binds to the head commit itself.
// A nil match with a nil error means versioning does not apply.
func Resolve(sit Situation, cfg Config) (*Match, error) {
	sortedTags := sync.OnceValue(func() []string {
		return git.SortTags(sit.TagNames())
	})

	for i, rule := range cfg.Rules {
		switch rule.Kind {
		case KindTag:
			if !sit.IsDetached() && !cfg.ConsiderTagsOnBranches {
				continue
			}
			for _, tag := range sortedTags() {
				if rule.Pattern.Matches(tag) {
					return NewMatch(sit.HeadCommit(), tag, rule)
				}
			}
		case KindBranch:
			if sit.IsDetached() {
				continue
			}
			branch := sit.BranchName()
			if rule.Pattern.Matches(branch) {
				return NewMatch(sit.HeadCommit(), branch, rule)
			}
		default:
			return nil, fmt.Errorf("ref rule %d: %w: %q", i, ErrUnknownKind, rule.Kind)
		}
	}

	if cfg.Rev != nil {
		rev := *cfg.Rev
		rev.Kind = KindCommit
		rev.Pattern = nil
		return NewMatch(sit.HeadCommit(), sit.HeadCommit(), rev)
	}

	return nil, nil
}

// DescribeRegexp returns the describe tag expression of the matched rule,
// or one matching every tag.
func (m *Match) DescribeRegexp() *regexp.Regexp {
	if re := m.Rule.DescribeTagPattern.Regexp(); re != nil {
		return re
	}
	return matchAll
}

var matchAll = regexp.MustCompile(`^(?:.*)$`)
