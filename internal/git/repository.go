// Package git provides the repository situation a build is versioned from:
// head commit, branch, tags, cleanliness and describe data. It talks to the
// git CLI; every command targets a specific directory via "git -C <dir>".
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repository represents a git working tree at a specific directory.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and included in error messages
// on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// try runs a command whose failure is an expected answer (for example
// symbolic-ref on a detached HEAD). ok is false when git exits non-zero.
func (r *Repository) try(ctx context.Context, args ...string) (string, bool) {
	out, err := r.Run(ctx, args...)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// lines splits command output into non-empty trimmed lines.
func lines(out string) []string {
	var result []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			result = append(result, l)
		}
	}
	return result
}
