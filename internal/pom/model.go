package pom

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultParentPath is used when a parent does not declare a relativePath.
const DefaultParentPath = "../pom.xml"

// Project is a project descriptor.
type Project struct {
	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	Version    *string `xml:"version"`
	Packaging  string  `xml:"packaging"`
	Parent     *Parent `xml:"parent"`
	Base
	Profiles []Profile `xml:"profiles>profile"`

	// File is the absolute path the project was read from.
	File string `xml:"-"`
}

// Base holds the sections shared by a project and its profiles.
type Base struct {
	Modules              []string              `xml:"modules>module"`
	Properties           Properties            `xml:"properties"`
	Dependencies         []Dependency          `xml:"dependencies>dependency"`
	DependencyManagement *DependencyManagement `xml:"dependencyManagement"`
	Build                *Build                `xml:"build"`
	Reporting            *Reporting            `xml:"reporting"`
}

// Profile is a profile section. Profiles without an id use DefaultProfileID.
type Profile struct {
	ID string `xml:"id"`
	Base
}

// DefaultProfileID is the id of a profile that does not declare one.
const DefaultProfileID = "default"

// Parent is a parent reference.
type Parent struct {
	GroupID      string  `xml:"groupId"`
	ArtifactID   string  `xml:"artifactId"`
	Version      string  `xml:"version"`
	RelativePath *string `xml:"relativePath"`
}

// Dependency is a dependency entry.
type Dependency struct {
	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	Version    *string `xml:"version"`
	Type       string  `xml:"type"`
	Classifier *string `xml:"classifier"`
	Scope      string  `xml:"scope"`
}

// DependencyManagement is a dependencyManagement section.
type DependencyManagement struct {
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Plugin is a build or reporting plugin entry.
type Plugin struct {
	GroupID    string  `xml:"groupId"`
	ArtifactID string  `xml:"artifactId"`
	Version    *string `xml:"version"`
}

// Build is a build section.
type Build struct {
	Plugins          []Plugin          `xml:"plugins>plugin"`
	PluginManagement *PluginManagement `xml:"pluginManagement"`
}

// PluginManagement is a pluginManagement section.
type PluginManagement struct {
	Plugins []Plugin `xml:"plugins>plugin"`
}

// Reporting is a reporting section.
type Reporting struct {
	Plugins []Plugin `xml:"plugins>plugin"`
}

// Dir returns the directory of the project file.
func (p *Project) Dir() string {
	return filepath.Dir(p.File)
}

// GAV returns the identity of the project. Group and version are inherited
// from the parent when the project does not declare them.
func (p *Project) GAV() GAV {
	g := GAV{GroupID: p.GroupID, ArtifactID: p.ArtifactID}
	if p.Version != nil {
		g.Version = *p.Version
	}
	if p.Parent != nil {
		if g.GroupID == "" {
			g.GroupID = p.Parent.GroupID
		}
		if p.Version == nil {
			g.Version = p.Parent.Version
		}
	}
	return g
}

// HasVersion reports whether the project has an own or inherited version.
func (p *Project) HasVersion() bool {
	return p.Version != nil || p.Parent != nil && p.Parent.Version != ""
}

// SetVersion sets the project's own version.
func (p *Project) SetVersion(v string) {
	p.Version = &v
}

// ParentFile returns the path the parent reference points at, or "" when
// the project has no parent or disables the lookup with an empty
// relativePath.
func (p *Project) ParentFile() string {
	if p.Parent == nil {
		return ""
	}
	rel := DefaultParentPath
	if p.Parent.RelativePath != nil {
		rel = strings.TrimSpace(*p.Parent.RelativePath)
		if rel == "" {
			return ""
		}
	}
	return ResolveFile(p.Dir(), rel)
}

// ModuleFiles returns the descriptor paths of all declared modules,
// including those declared in profiles, without duplicates.
func (p *Project) ModuleFiles() []string {
	seen := make(map[string]bool)
	var files []string
	add := func(modules []string) {
		for _, m := range modules {
			f := ResolveFile(p.Dir(), strings.TrimSpace(m))
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	add(p.Modules)
	for _, prof := range p.Profiles {
		add(prof.Modules)
	}
	return files
}

// ProfileID returns the id of the profile or DefaultProfileID.
func (p *Profile) ProfileID() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return DefaultProfileID
}

// GAV returns the identity of the parent reference.
func (p *Parent) GAV() GAV {
	return GAV{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Version: p.Version}
}

// GAV returns the identity the dependency refers to.
func (d *Dependency) GAV() GAV {
	return GAV{GroupID: d.GroupID, ArtifactID: d.ArtifactID, Version: deref(d.Version)}
}

// SetVersion sets the dependency version.
func (d *Dependency) SetVersion(v string) {
	d.Version = &v
}

// ManagementKey returns "group:artifact:type[:classifier]" with type
// defaulting to jar.
func (d *Dependency) ManagementKey() string {
	return ManagementKey(d.GroupID, d.ArtifactID, d.Type, d.Classifier)
}

// ManagementKey builds a dependency correspondence key.
func ManagementKey(group, artifact, typ string, classifier *string) string {
	if typ == "" {
		typ = "jar"
	}
	key := group + ":" + artifact + ":" + typ
	if classifier != nil {
		key += ":" + *classifier
	}
	return key
}

// GAV returns the identity the plugin refers to.
func (p *Plugin) GAV() GAV {
	return GAV{GroupID: p.Group(), ArtifactID: p.ArtifactID, Version: deref(p.Version)}
}

// Group returns the plugin group or DefaultPluginGroup.
func (p *Plugin) Group() string {
	if p.GroupID == "" {
		return DefaultPluginGroup
	}
	return p.GroupID
}

// SetVersion sets the plugin version.
func (p *Plugin) SetVersion(v string) {
	p.Version = &v
}

// Key returns "group:artifact" with the default plugin group applied.
func (p *Plugin) Key() string {
	return PluginKey(p.GroupID, p.ArtifactID)
}

// PluginKey builds a plugin correspondence key.
func PluginKey(group, artifact string) string {
	if group == "" {
		group = DefaultPluginGroup
	}
	return group + ":" + artifact
}

// ResolveFile joins rel to dir. A path naming a directory resolves to the
// pom.xml inside it.
func ResolveFile(dir, rel string) string {
	f := rel
	if !filepath.IsAbs(f) {
		f = filepath.Join(dir, rel)
	}
	if info, err := os.Stat(f); err == nil && info.IsDir() {
		f = filepath.Join(f, "pom.xml")
	}
	return filepath.Clean(f)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sortGAVs(gavs []GAV) {
	sort.Slice(gavs, func(i, j int) bool { return gavs[i].String() < gavs[j].String() })
}
