package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/gitver/internal/git"
	"github.com/leapstack-labs/gitver/internal/placeholder"
	"github.com/leapstack-labs/gitver/internal/refs"
)

// SkipReason explains why a build or descriptor is left untouched.
type SkipReason string

// Skip reasons.
const (
	SkipNone      SkipReason = ""
	SkipDisabled  SkipReason = "versioning is disabled"
	SkipNoMatch   SkipReason = "no matching ref rule and no rev fallback"
	SkipNoVersion SkipReason = "project version can not be determined"
	SkipUnrelated SkipReason = "unrelated project"
)

// State is everything resolved once per build before any descriptor is
// touched.
type State struct {
	Situation git.Situation
	// Match is nil when Skip is set.
	Match           *refs.Match
	Placeholders    *placeholder.Map
	BuildProperties []placeholder.Property
	UpdatePom       bool
	Skip            SkipReason
}

// State resolves the build state on first use.
func (b *Build) State(ctx context.Context) (*State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(ctx)
}

func (b *Build) stateLocked(ctx context.Context) (*State, error) {
	if b.state != nil {
		return b.state, nil
	}
	st, err := b.resolve(ctx)
	if err != nil {
		return nil, err
	}
	b.state = st
	return st, nil
}

func (b *Build) resolve(ctx context.Context) (*State, error) {
	if b.cfg.Disable {
		b.logger.Info("skip - versioning is disabled")
		return &State{Skip: SkipDisabled}, nil
	}
	if b.cfg.StateDir == "" {
		return nil, ErrNoStateDir
	}

	sit, err := b.situation(ctx, filepath.Dir(b.cfg.StateDir), b.logger)
	if err != nil {
		return nil, fmt.Errorf("reading git situation: %w", err)
	}
	overrides, err := git.ResolveOverrides(b.cfg.RefOptions, b.cfg.LookupEnv, b.logger)
	if err != nil {
		return nil, err
	}
	if sit, err = overrides.Apply(sit); err != nil {
		return nil, err
	}
	b.logger.Debug("git situation",
		"root", sit.RootDir,
		"head", sit.Head,
		"timestamp", sit.Timestamp,
		"branch", sit.Branch,
		"tags", sit.Tags,
		"clean", sit.Clean)

	match, err := refs.Resolve(sit, b.cfg.Refs)
	if err != nil {
		return nil, err
	}
	if match == nil {
		b.logMiss(sit)
		return &State{Situation: sit, Skip: SkipNoMatch}, nil
	}

	rule := match.Rule
	b.logger.Info("matching ref", "type", KindTitle(match.Kind()), "ref", match.RefName)
	b.logger.Info("ref configuration",
		"pattern", rule.Pattern.String(),
		"describe_tag_pattern", rule.DescribeTagPattern.String(),
		"version", rule.Version)
	for name, format := range rule.Properties {
		b.logger.Info("property format", "name", name, "format", format)
	}

	st := &State{
		Situation: sit,
		Match:     match,
		Placeholders: placeholder.Global(placeholder.Inputs{
			Situation:      sit,
			Match:          match,
			UserProperties: b.cfg.UserProperties,
			Environ:        b.cfg.Environ,
		}),
		BuildProperties: placeholder.BuildProperties(sit, match),
		UpdatePom:       b.updatePom(rule),
	}
	if st.UpdatePom {
		b.logger.Info("original descriptors will be updated")
	}
	return st, nil
}

// updatePom resolves option over rule over global.
func (b *Build) updatePom(rule refs.Rule) bool {
	switch {
	case b.cfg.UpdatePomOption != nil:
		return *b.cfg.UpdatePomOption
	case rule.UpdatePom != nil:
		return *rule.UpdatePom
	default:
		return b.cfg.UpdatePom
	}
}

func (b *Build) logMiss(sit git.Situation) {
	b.logger.Warn("skip - no matching ref configuration and no rev configuration defined",
		"branch", sit.Branch,
		"tags", strings.Join(sit.Tags, ","))
	for i, r := range b.cfg.Refs.Rules {
		b.logger.Warn("defined ref configuration", "index", i, "type", KindTitle(r.Kind), "pattern", r.Pattern.String())
	}
}

// KindTitle renders a rule kind for display, e.g. "Branch".
func KindTitle(k refs.Kind) string {
	return cases.Title(language.English).String(string(k))
}
