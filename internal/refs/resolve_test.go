package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type situation struct {
	head     string
	branch   string
	tags     []string
	tagCalls int
}

func (s *situation) HeadCommit() string { return s.head }
func (s *situation) IsDetached() bool   { return s.branch == "" }
func (s *situation) BranchName() string { return s.branch }
func (s *situation) TagNames() []string {
	s.tagCalls++
	return s.tags
}

const head = "abcdef1234567890abcdef1234567890abcdef12"

func branchRule(pattern, version string) Rule {
	r := Rule{Kind: KindBranch, Version: version}
	if pattern != "" {
		r.Pattern = MustCompilePattern(pattern)
	}
	return r
}

func tagRule(pattern, version string) Rule {
	r := Rule{Kind: KindTag, Version: version}
	if pattern != "" {
		r.Pattern = MustCompilePattern(pattern)
	}
	return r
}

func TestResolve_FirstMatchingRuleWins(t *testing.T) {
	sit := &situation{head: head, branch: "main"}
	cfg := Config{Rules: []Rule{
		branchRule("release/.*", "release"),
		branchRule("main", "first"),
		branchRule("", "catch-all"),
	}}

	m, err := Resolve(sit, cfg)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "first", m.Rule.Version)
	assert.Equal(t, "main", m.RefName)
	assert.Equal(t, head, m.Commit)
	assert.Equal(t, KindBranch, m.Kind())
}

func TestResolve_NonOverlappingOrderIndependent(t *testing.T) {
	sit := &situation{head: head, branch: "develop"}
	a := branchRule("main", "a")
	b := branchRule("develop", "b")

	m1, err := Resolve(sit, Config{Rules: []Rule{a, b}})
	require.NoError(t, err)
	m2, err := Resolve(sit, Config{Rules: []Rule{b, a}})
	require.NoError(t, err)
	assert.Equal(t, "b", m1.Rule.Version)
	assert.Equal(t, m1.Rule.Version, m2.Rule.Version)
}

func TestResolve_PatternMatchesWholeName(t *testing.T) {
	sit := &situation{head: head, branch: "feature/main-fix"}
	m, err := Resolve(sit, Config{Rules: []Rule{branchRule("main", "x")}})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestResolve_LowestTagWins(t *testing.T) {
	sit := &situation{head: head, tags: []string{"1.2.0", "1.10.0", "1.9.0"}}
	m, err := Resolve(sit, Config{Rules: []Rule{tagRule("", "${ref}")}})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "1.2.0", m.RefName)
	assert.Equal(t, KindTag, m.Kind())
}

func TestResolve_TagPatternFiltersBeforeOrdering(t *testing.T) {
	sit := &situation{head: head, tags: []string{"v1.0.0", "2.0.0", "3.0.0"}}
	m, err := Resolve(sit, Config{Rules: []Rule{tagRule(`\d+\.\d+\.\d+`, "x")}})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "2.0.0", m.RefName)
}

func TestResolve_TagsOnlyWhenDetached(t *testing.T) {
	sit := &situation{head: head, branch: "main", tags: []string{"1.0.0"}}
	rules := []Rule{tagRule("", "tag"), branchRule("", "branch")}

	m, err := Resolve(sit, Config{Rules: rules})
	require.NoError(t, err)
	assert.Equal(t, "branch", m.Rule.Version)

	m, err = Resolve(sit, Config{Rules: rules, ConsiderTagsOnBranches: true})
	require.NoError(t, err)
	assert.Equal(t, "tag", m.Rule.Version)
	assert.Equal(t, "1.0.0", m.RefName)
}

func TestResolve_BranchRulesSkippedWhenDetached(t *testing.T) {
	sit := &situation{head: head}
	m, err := Resolve(sit, Config{Rules: []Rule{branchRule("", "branch")}})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestResolve_TagListComputedOnce(t *testing.T) {
	sit := &situation{head: head, tags: []string{"x"}}
	_, err := Resolve(sit, Config{Rules: []Rule{
		tagRule("a", "1"),
		tagRule("b", "2"),
		tagRule("c", "3"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, sit.tagCalls)
}

func TestResolve_RevFallback(t *testing.T) {
	sit := &situation{head: head, branch: "main"}
	rev := &Rule{Version: "${commit}", Pattern: MustCompilePattern("ignored")}

	m, err := Resolve(sit, Config{Rules: []Rule{branchRule("develop", "x")}, Rev: rev})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, KindCommit, m.Kind())
	assert.Equal(t, head, m.RefName)
	assert.Nil(t, m.Rule.Pattern)
	assert.Equal(t, "${commit}", m.Rule.Version)
}

func TestResolve_NoMatch(t *testing.T) {
	sit := &situation{head: head, branch: "main"}
	m, err := Resolve(sit, Config{})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestResolve_UnknownKind(t *testing.T) {
	sit := &situation{head: head, branch: "main"}
	_, err := Resolve(sit, Config{Rules: []Rule{{Kind: "commit"}}})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestNewMatch_RequiresFields(t *testing.T) {
	_, err := NewMatch("", "main", Rule{})
	assert.Error(t, err)
	_, err = NewMatch(head, "", Rule{})
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("BRANCH")
	require.NoError(t, err)
	assert.Equal(t, KindBranch, k)

	k, err = ParseKind(" tag ")
	require.NoError(t, err)
	assert.Equal(t, KindTag, k)

	_, err = ParseKind("commit")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestMatch_DescribeRegexp(t *testing.T) {
	m := &Match{Commit: head, RefName: "main"}
	assert.True(t, m.DescribeRegexp().MatchString("anything"))

	m.Rule.DescribeTagPattern = MustCompilePattern(`v\d+`)
	assert.True(t, m.DescribeRegexp().MatchString("v1"))
	assert.False(t, m.DescribeRegexp().MatchString("xv1"))
}
