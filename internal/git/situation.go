package git

import (
	"fmt"
	"regexp"
	"time"
)

// ZeroCommit is reported as head commit of a repository without commits.
const ZeroCommit = "0000000000000000000000000000000000000000"

// Description is a describe-style summary of the head commit: the nearest
// matching tag and the number of commits since it.
type Description struct {
	Commit   string
	Tag      string
	Distance int
}

// String returns "<tag>-<distance>-g<short commit>".
func (d Description) String() string {
	return fmt.Sprintf("%s-%d-g%s", d.Tag, d.Distance, ShortCommit(d.Commit))
}

// Describer computes a Description restricted to tags matching pattern.
type Describer func(pattern *regexp.Regexp) (Description, error)

// Situation is an immutable view of the repository state at HEAD.
type Situation struct {
	RootDir   string
	Head      string
	Timestamp time.Time
	// Branch is empty when HEAD is detached.
	Branch string
	Tags   []string
	Clean  bool

	describe Describer
}

// WithDescriber returns a copy of s that describes through fn.
func (s Situation) WithDescriber(fn Describer) Situation {
	s.describe = fn
	return s
}

// HeadCommit returns the head commit hash.
func (s Situation) HeadCommit() string { return s.Head }

// IsDetached reports whether HEAD points at a commit rather than a branch.
func (s Situation) IsDetached() bool { return s.Branch == "" }

// BranchName returns the current branch, empty when detached.
func (s Situation) BranchName() string { return s.Branch }

// TagNames returns the tags pointing at HEAD.
func (s Situation) TagNames() []string { return s.Tags }

// Describe describes HEAD against tags matching pattern. Without a
// describer the head itself is reported with the "root" tag.
func (s Situation) Describe(pattern *regexp.Regexp) (Description, error) {
	if s.describe == nil {
		return Description{Commit: s.Head, Tag: rootTag}, nil
	}
	return s.describe(pattern)
}

// ShortCommit returns the first seven characters of a commit hash.
func ShortCommit(commit string) string {
	if len(commit) < 7 {
		return commit
	}
	return commit[:7]
}
