// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/gitver/internal/cli/output"
	"github.com/leapstack-labs/gitver/internal/testutil"
)

// RulesYAML is the config written by SetupTestProject: tags v<version>
// release as <version>, every branch builds <branch>-SNAPSHOT.
const RulesYAML = `refs:
  list:
    - type: tag
      pattern: "v(?P<version>.*)"
      version: "${ref.version}"
    - type: branch
      pattern: "(?P<name>.+)"
      version: "${ref.name}-SNAPSHOT"
`

// overrideEnv are variables that change the git situation or options.
var overrideEnv = []string{
	"GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "JENKINS_HOME",
	"VERSIONING_GIT_REF", "VERSIONING_GIT_TAG", "VERSIONING_GIT_BRANCH",
	"VERSIONING_DISABLE", "VERSIONING_UPDATE_POM",
}

// IsolateEnv unsets CI and VERSIONING_ variables for the test.
func IsolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range overrideEnv {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unsetting %s: %v", key, err)
		}
	}
}

// SetupTestProject creates a committed repository on branch main holding
// an aggregator com.example:root:1.0.0 with one module com.example:a.
func SetupTestProject(t *testing.T) *testutil.Repo {
	t.Helper()
	IsolateEnv(t)

	repo := testutil.NewRepo(t)
	repo.WriteFile(".mvn/gitver.yaml", RulesYAML)
	repo.WriteFile("pom.xml", testutil.Pom{
		Group: "com.example", Artifact: "root", Version: "1.0.0", Modules: []string{"a"},
	}.String())
	repo.WriteFile("a/pom.xml", testutil.Pom{
		Artifact: "a", Version: "1.0.0",
		Parent: &testutil.PomParent{Group: "com.example", Artifact: "root", Version: "1.0.0"},
	}.String())
	repo.Commit("initial")
	return repo
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// HasANSI reports whether s contains ANSI escape codes.
func HasANSI(s string) bool {
	return ansiPattern.MatchString(s)
}

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if HasANSI(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
