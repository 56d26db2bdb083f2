// Package patch applies a matched rule to a project descriptor in memory.
package patch

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/gitver/internal/placeholder"
	"github.com/leapstack-labs/gitver/internal/pom"
	"github.com/leapstack-labs/gitver/internal/refs"
	"github.com/leapstack-labs/gitver/internal/template"
)

// Relation decides which identities may be rewritten.
type Relation interface {
	Contains(g pom.GAV) bool
}

// Change records one rewritten value.
type Change struct {
	// Scope is "project" or "profile:<id>".
	Scope   string `json:"scope" yaml:"scope"`
	Section string `json:"section" yaml:"section"`
	Key     string `json:"key" yaml:"key"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
}

// Patcher rewrites versions and properties of related descriptors.
type Patcher struct {
	Rule    refs.Rule
	Global  *placeholder.Map
	Related Relation
	// BuildProperties are appended to every patched project.
	BuildProperties []placeholder.Property
	Logger          *slog.Logger
}

type run struct {
	*Patcher
	logger          *slog.Logger
	originalVersion string
	changes         []Change
}

// Apply mutates project in place and returns what changed. Steps run in a
// fixed order: own and parent version, dependency and plugin versions,
// properties, build metadata.
func (p *Patcher) Apply(project *pom.Project) ([]Change, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &run{
		Patcher:         p,
		logger:          logger.With("project", project.GAV().ProjectID()),
		originalVersion: project.GAV().Version,
	}

	if format := p.Rule.Version; format != "" {
		if err := r.projectVersion(project, format); err != nil {
			return nil, err
		}
		if err := r.references("project", &project.Base, format); err != nil {
			return nil, err
		}
		for i := range project.Profiles {
			prof := &project.Profiles[i]
			if err := r.references("profile:"+prof.ProfileID(), &prof.Base, format); err != nil {
				return nil, err
			}
		}
	}

	if len(p.Rule.Properties) > 0 {
		if err := r.properties("project", &project.Properties); err != nil {
			return nil, err
		}
		for i := range project.Profiles {
			prof := &project.Profiles[i]
			if err := r.properties("profile:"+prof.ProfileID(), &prof.Properties); err != nil {
				return nil, err
			}
		}
	}

	for _, prop := range p.BuildProperties {
		project.Properties.Set(prop.Name, prop.Value)
	}

	return r.changes, nil
}

func (r *run) projectVersion(project *pom.Project, format string) error {
	if parent := project.Parent; parent != nil && r.Related.Contains(parent.GAV()) {
		v, err := r.version(format, parent.Version)
		if err != nil {
			return fmt.Errorf("parent version: %w", err)
		}
		r.record("project", "parent", parent.GAV().ProjectID(), parent.Version, v)
		r.logger.Debug("set parent version", "parent", parent.GAV().String(), "version", v)
		parent.Version = v
	}

	if project.Version != nil {
		v, err := r.version(format, *project.Version)
		if err != nil {
			return fmt.Errorf("project version: %w", err)
		}
		r.record("project", "version", project.GAV().ProjectID(), *project.Version, v)
		project.SetVersion(v)
	}
	r.logger.Info("project version", "version", project.GAV().Version)
	return nil
}

func (r *run) references(scope string, base *pom.Base, format string) error {
	if err := r.dependencies(scope, "dependencies", base.Dependencies, format); err != nil {
		return err
	}
	if dm := base.DependencyManagement; dm != nil {
		if err := r.dependencies(scope, "dependencyManagement", dm.Dependencies, format); err != nil {
			return err
		}
	}
	if b := base.Build; b != nil {
		if err := r.plugins(scope, "plugins", b.Plugins, format); err != nil {
			return err
		}
		if pm := b.PluginManagement; pm != nil {
			if err := r.plugins(scope, "pluginManagement", pm.Plugins, format); err != nil {
				return err
			}
		}
	}
	if rep := base.Reporting; rep != nil {
		if err := r.plugins(scope, "reporting", rep.Plugins, format); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) dependencies(scope, section string, deps []pom.Dependency, format string) error {
	for i := range deps {
		d := &deps[i]
		if d.Version == nil || !r.Related.Contains(d.GAV()) {
			continue
		}
		v, err := r.version(format, *d.Version)
		if err != nil {
			return fmt.Errorf("%s %s: %w", section, d.ManagementKey(), err)
		}
		r.record(scope, section, d.GAV().ProjectID(), *d.Version, v)
		r.logger.Debug("set dependency version", "scope", scope, "section", section, "dependency", d.GAV().ProjectID(), "version", v)
		d.SetVersion(v)
	}
	return nil
}

func (r *run) plugins(scope, section string, plugins []pom.Plugin, format string) error {
	for i := range plugins {
		pl := &plugins[i]
		if pl.Version == nil || !r.Related.Contains(pl.GAV()) {
			continue
		}
		v, err := r.version(format, *pl.Version)
		if err != nil {
			return fmt.Errorf("%s %s: %w", section, pl.Key(), err)
		}
		r.record(scope, section, pl.Key(), *pl.Version, v)
		r.logger.Debug("set plugin version", "scope", scope, "section", section, "plugin", pl.Key(), "version", v)
		pl.SetVersion(v)
	}
	return nil
}

func (r *run) properties(scope string, props *pom.Properties) error {
	for _, prop := range props.All() {
		format, ok := r.Rule.Properties[prop.Name]
		if !ok {
			continue
		}
		values := placeholder.ForProperty(placeholder.ForProject(r.Global, r.originalVersion), prop.Value)
		v, err := template.Render(format, values)
		if err != nil {
			return fmt.Errorf("property %s: %w", prop.Name, err)
		}
		if v == prop.Value {
			continue
		}
		r.record(scope, "properties", prop.Name, prop.Value, v)
		r.logger.Info("set property", "scope", scope, "name", prop.Name, "value", v)
		props.Set(prop.Name, v)
	}
	return nil
}

// version renders format for an entry whose original version is original.
func (r *run) version(format, original string) (string, error) {
	return template.RenderVersion(format, placeholder.ForProject(r.Global, original))
}

func (r *run) record(scope, section, key, from, to string) {
	r.changes = append(r.changes, Change{Scope: scope, Section: section, Key: key, From: from, To: to})
}
