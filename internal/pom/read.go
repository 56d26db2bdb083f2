package pom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Read loads the project descriptor at path.
func Read(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", abs, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", abs, err)
	}
	p.File = abs
	return p, nil
}

// Parse decodes a project descriptor. Text values are trimmed.
func Parse(data []byte) (*Project, error) {
	var doc struct {
		XMLName xml.Name `xml:"project"`
		Project
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	p := doc.Project
	p.normalize()
	return &p, nil
}

func (p *Project) normalize() {
	p.GroupID = strings.TrimSpace(p.GroupID)
	p.ArtifactID = strings.TrimSpace(p.ArtifactID)
	trimPtr(p.Version)
	if p.Parent != nil {
		p.Parent.GroupID = strings.TrimSpace(p.Parent.GroupID)
		p.Parent.ArtifactID = strings.TrimSpace(p.Parent.ArtifactID)
		p.Parent.Version = strings.TrimSpace(p.Parent.Version)
	}
	p.Base.normalize()
	for i := range p.Profiles {
		p.Profiles[i].ID = strings.TrimSpace(p.Profiles[i].ID)
		p.Profiles[i].Base.normalize()
	}
}

func (b *Base) normalize() {
	normalizeDependencies(b.Dependencies)
	if b.DependencyManagement != nil {
		normalizeDependencies(b.DependencyManagement.Dependencies)
	}
	if b.Build != nil {
		normalizePlugins(b.Build.Plugins)
		if b.Build.PluginManagement != nil {
			normalizePlugins(b.Build.PluginManagement.Plugins)
		}
	}
	if b.Reporting != nil {
		normalizePlugins(b.Reporting.Plugins)
	}
}

func normalizeDependencies(deps []Dependency) {
	for i := range deps {
		d := &deps[i]
		d.GroupID = strings.TrimSpace(d.GroupID)
		d.ArtifactID = strings.TrimSpace(d.ArtifactID)
		d.Type = strings.TrimSpace(d.Type)
		d.Scope = strings.TrimSpace(d.Scope)
		trimPtr(d.Version)
		trimPtr(d.Classifier)
	}
}

func normalizePlugins(plugins []Plugin) {
	for i := range plugins {
		pl := &plugins[i]
		pl.GroupID = strings.TrimSpace(pl.GroupID)
		pl.ArtifactID = strings.TrimSpace(pl.ArtifactID)
		trimPtr(pl.Version)
	}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
