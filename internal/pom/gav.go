// Package pom is the subset of the Maven project object model that versions
// are derived for: identities, parent and module links, dependencies,
// plugins, properties and profiles.
package pom

import "fmt"

// WildcardVersion matches every version of a group and artifact.
const WildcardVersion = "*"

// DefaultPluginGroup is the group of plugins that do not declare one.
const DefaultPluginGroup = "org.apache.maven.plugins"

// GAV is a group, artifact and version identity. Equality is structural.
type GAV struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
	Version    string `json:"version" yaml:"version"`
}

// String returns "group:artifact:version".
func (g GAV) String() string {
	return fmt.Sprintf("%s:%s:%s", g.GroupID, g.ArtifactID, g.Version)
}

// ProjectID returns "group:artifact".
func (g GAV) ProjectID() string {
	return g.GroupID + ":" + g.ArtifactID
}

// Wildcard returns g with the wildcard version.
func (g GAV) Wildcard() GAV {
	g.Version = WildcardVersion
	return g
}

// Set is a set of identities where a wildcard version entry matches every
// version of its group and artifact.
type Set map[GAV]struct{}

// Add inserts g.
func (s Set) Add(g GAV) {
	s[g] = struct{}{}
}

// Has reports whether g is present exactly.
func (s Set) Has(g GAV) bool {
	_, ok := s[g]
	return ok
}

// Contains reports whether g is a member, exactly or through a wildcard.
func (s Set) Contains(g GAV) bool {
	return s.Has(g) || s.Has(g.Wildcard())
}

// Sorted returns the members ordered by string form.
func (s Set) Sorted() []GAV {
	out := make([]GAV, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sortGAVs(out)
	return out
}
