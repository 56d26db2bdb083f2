package git

import (
	"fmt"
	"log/slog"
	"strings"
)

// InvalidRefError reports a malformed branch, tag or ref override.
type InvalidRefError struct {
	Kind  string
	Value string
}

func (e *InvalidRefError) Error() string {
	switch e.Kind {
	case "ref":
		return fmt.Sprintf("invalid provided ref %s - needs to start with refs/", e.Value)
	default:
		return fmt.Sprintf("invalid %s ref %s", e.Kind, e.Value)
	}
}

// RefOptions are the explicitly requested refs. A nil field was not given.
type RefOptions struct {
	Ref    *string
	Branch *string
	Tag    *string
}

// Overrides replaces the branch and tags of a situation. Nil fields mean
// "no branch" (detached) and "no tags" once the override applies.
type Overrides struct {
	Branch *string
	Tag    *string
}

// Active reports whether any override was found.
func (o Overrides) Active() bool {
	return o.Branch != nil || o.Tag != nil
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// ResolveOverrides determines the ref overrides from explicit options or,
// when none are given, from well known CI environments.
func ResolveOverrides(opts RefOptions, lookup LookupEnv, logger *slog.Logger) (Overrides, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	env := func(key string) *string {
		if v, ok := lookup(key); ok {
			return &v
		}
		return nil
	}

	o := Overrides{Branch: opts.Branch, Tag: opts.Tag}

	if !o.Active() && opts.Ref != nil {
		ref := *opts.Ref
		if !strings.HasPrefix(ref, "refs/") {
			return Overrides{}, &InvalidRefError{Kind: "ref", Value: ref}
		}
		if strings.HasPrefix(ref, "refs/tags/") {
			o.Tag = &ref
		} else {
			o.Branch = &ref
		}
	}

	if !o.Active() && deref(env("GITHUB_ACTIONS")) == "true" {
		logger.Info("gather git situation from GitHub Actions environment variable: GITHUB_REF")
		if ref := env("GITHUB_REF"); ref != nil && strings.HasPrefix(*ref, "refs/") {
			logger.Debug("GitHub Actions ref", "GITHUB_REF", *ref)
			if strings.HasPrefix(*ref, "refs/tags/") {
				o.Tag = ref
			} else {
				o.Branch = ref
			}
		}
	}

	if !o.Active() && deref(env("GITLAB_CI")) == "true" {
		logger.Info("gather git situation from GitLab CI environment variables: CI_COMMIT_BRANCH and CI_COMMIT_TAG")
		o.Branch, o.Tag = env("CI_COMMIT_BRANCH"), env("CI_COMMIT_TAG")
	}

	if !o.Active() && deref(env("CIRCLECI")) == "true" {
		logger.Info("gather git situation from Circle CI environment variables: CIRCLE_BRANCH and CIRCLE_TAG")
		o.Branch, o.Tag = env("CIRCLE_BRANCH"), env("CIRCLE_TAG")
	}

	if !o.Active() && strings.TrimSpace(deref(env("JENKINS_HOME"))) != "" {
		logger.Info("gather git situation from jenkins environment variables: BRANCH_NAME and TAG_NAME")
		branch, tag := env("BRANCH_NAME"), env("TAG_NAME")
		if branch != nil && tag != nil && *branch == *tag {
			o.Tag = tag
		} else {
			o.Branch, o.Tag = branch, tag
		}
	}

	return o, nil
}

// Apply returns a copy of s with branch and tags replaced. Inactive
// overrides return s unchanged.
func (o Overrides) Apply(s Situation) (Situation, error) {
	if !o.Active() {
		return s, nil
	}

	branch, err := normalizeBranch(o.Branch)
	if err != nil {
		return Situation{}, err
	}
	tag, err := normalizeTag(o.Tag)
	if err != nil {
		return Situation{}, err
	}

	s.Branch = branch
	if tag == "" {
		s.Tags = nil
	} else {
		s.Tags = []string{tag}
	}
	return s, nil
}

func normalizeBranch(v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", nil
	}
	branch := *v
	if strings.HasPrefix(branch, "refs/tags/") {
		return "", &InvalidRefError{Kind: "branch", Value: branch}
	}
	// Strip in two steps to also support refs like refs/pull/1000/head.
	branch = strings.TrimPrefix(branch, "refs/")
	branch = strings.TrimPrefix(branch, "heads/")
	return branch, nil
}

func normalizeTag(v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", nil
	}
	tag := *v
	if strings.HasPrefix(tag, "refs/") && !strings.HasPrefix(tag, "refs/tags/") {
		return "", &InvalidRefError{Kind: "tag", Value: tag}
	}
	return strings.TrimPrefix(tag, "refs/tags/"), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
