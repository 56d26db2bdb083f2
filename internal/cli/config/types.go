// Package config loads the versioning configuration of a build from the
// state directory, the environment and command-line flags.
package config

import (
	"github.com/leapstack-labs/gitver/internal/pom"
	"github.com/leapstack-labs/gitver/internal/refs"
)

// Config holds the file configuration plus the command options.
type Config struct {
	Disable            bool          `koanf:"disable"`
	DescribeTagPattern *refs.Pattern `koanf:"describe_tag_pattern"`
	UpdatePom          bool          `koanf:"update_pom"`
	Refs               RefsConfig    `koanf:"refs"`
	Rev                *RuleConfig   `koanf:"rev"`
	RelatedProjects    []ProjectRef  `koanf:"related_projects"`
	Options            Options       `koanf:"options"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectDir is the directory the build starts from.
	ProjectDir string `koanf:"project_dir"`
	// StateDir is the resolved build state directory.
	StateDir string `koanf:"-"`
	// ConfigFile is the file that was loaded, empty when none exists.
	ConfigFile string `koanf:"-"`
}

// RefsConfig is the ordered rule list.
type RefsConfig struct {
	ConsiderTagsOnBranches bool         `koanf:"consider_tags_on_branches"`
	List                   []RuleConfig `koanf:"list"`
}

// RuleConfig is one configured ref rule. Type is ignored for rev.
type RuleConfig struct {
	Type               refs.Kind         `koanf:"type"`
	Pattern            *refs.Pattern     `koanf:"pattern"`
	Version            string            `koanf:"version"`
	Properties         map[string]string `koanf:"properties"`
	DescribeTagPattern *refs.Pattern     `koanf:"describe_tag_pattern"`
	UpdatePom          *bool             `koanf:"update_pom"`
}

// ProjectRef names a project that is always treated as related.
type ProjectRef struct {
	GroupID    string `koanf:"group_id"`
	ArtifactID string `koanf:"artifact_id"`
}

// Options are the per-invocation settings. Nil fields were not given.
type Options struct {
	GitRef    *string `koanf:"git_ref"`
	GitTag    *string `koanf:"git_tag"`
	GitBranch *string `koanf:"git_branch"`
	Disable   *bool   `koanf:"disable"`
	UpdatePom *bool   `koanf:"update_pom"`
	// Properties are the user properties given with -D.
	Properties map[string]string `koanf:"-"`
}

// Defaults.
const (
	ConfigFileName = "gitver.yaml"
	DefaultOutput  = "auto"
)

// Disabled reports whether versioning is switched off, the command option
// winning over the file.
func (c *Config) Disabled() bool {
	if c.Options.Disable != nil {
		return *c.Options.Disable
	}
	return c.Disable
}

// RefsConfig converts the configured rules, applying the global describe
// tag pattern and update_pom setting to rules that leave them unset.
func (c *Config) RefsConfig() refs.Config {
	out := refs.Config{ConsiderTagsOnBranches: c.Refs.ConsiderTagsOnBranches}
	for _, rc := range c.Refs.List {
		out.Rules = append(out.Rules, c.rule(rc))
	}
	if c.Rev != nil {
		rev := c.rule(*c.Rev)
		rev.Kind = refs.KindCommit
		rev.Pattern = nil
		out.Rev = &rev
	}
	return out
}

func (c *Config) rule(rc RuleConfig) refs.Rule {
	r := refs.Rule{
		Kind:               rc.Type,
		Pattern:            rc.Pattern,
		Version:            rc.Version,
		Properties:         rc.Properties,
		DescribeTagPattern: rc.DescribeTagPattern,
		UpdatePom:          rc.UpdatePom,
	}
	if r.DescribeTagPattern == nil {
		r.DescribeTagPattern = c.DescribeTagPattern
	}
	if r.UpdatePom == nil {
		global := c.UpdatePom
		r.UpdatePom = &global
	}
	return r
}

// Declared returns the configured related projects.
func (c *Config) Declared() []pom.GAV {
	out := make([]pom.GAV, 0, len(c.RelatedProjects))
	for _, p := range c.RelatedProjects {
		out = append(out, pom.GAV{GroupID: p.GroupID, ArtifactID: p.ArtifactID})
	}
	return out
}
