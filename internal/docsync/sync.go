// Package docsync re-applies the values of a patched project model to the
// raw descriptor document it was read from. Both trees are walked in
// lockstep and every pair of entries must agree on its identity key; only
// version and property text is rewritten.
package docsync

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/gitver/internal/pom"
	"github.com/leapstack-labs/gitver/internal/rawxml"
)

// Synchronizer copies model values into raw documents.
type Synchronizer struct {
	// PropertyNames are the properties whose values are copied.
	PropertyNames []string
}

// Patch returns a patched copy of doc. doc itself is never modified, and no
// document is returned when the trees diverge.
func (s *Synchronizer) Patch(doc *rawxml.Document, project *pom.Project) (*rawxml.Document, error) {
	out := doc.Clone()
	root := out.Root()
	if root == nil {
		return nil, ErrNoRootElement
	}

	if el := root.Path("parent", "version"); el != nil && project.Parent != nil {
		setText(el, project.Parent.Version)
	}
	if el := root.Child("version"); el != nil && project.Version != nil {
		setText(el, *project.Version)
	}

	if err := s.base("", root, &project.Base); err != nil {
		return nil, err
	}
	if err := s.profiles(root, project.Profiles); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Synchronizer) base(scope string, el *rawxml.Node, b *pom.Base) error {
	s.properties(el.Child("properties"), &b.Properties)

	if deps := el.Child("dependencies"); deps != nil {
		if err := syncDependencies(scope+"dependencies", deps, b.Dependencies); err != nil {
			return err
		}
	}
	if deps := el.Path("dependencyManagement", "dependencies"); deps != nil {
		var model []pom.Dependency
		if b.DependencyManagement != nil {
			model = b.DependencyManagement.Dependencies
		}
		if err := syncDependencies(scope+"dependencyManagement", deps, model); err != nil {
			return err
		}
	}

	if plugins := el.Path("build", "plugins"); plugins != nil {
		var model []pom.Plugin
		if b.Build != nil {
			model = b.Build.Plugins
		}
		if err := syncPlugins(scope+"build/plugins", plugins, model); err != nil {
			return err
		}
	}
	if plugins := el.Path("build", "pluginManagement", "plugins"); plugins != nil {
		var model []pom.Plugin
		if b.Build != nil && b.Build.PluginManagement != nil {
			model = b.Build.PluginManagement.Plugins
		}
		if err := syncPlugins(scope+"build/pluginManagement", plugins, model); err != nil {
			return err
		}
	}
	if plugins := el.Path("reporting", "plugins"); plugins != nil {
		var model []pom.Plugin
		if b.Reporting != nil {
			model = b.Reporting.Plugins
		}
		if err := syncPlugins(scope+"reporting", plugins, model); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchronizer) properties(el *rawxml.Node, props *pom.Properties) {
	if el == nil {
		return
	}
	for _, name := range s.PropertyNames {
		prop := el.Child(name)
		if prop == nil {
			continue
		}
		if v, ok := props.Get(name); ok {
			setText(prop, v)
		}
	}
}

func (s *Synchronizer) profiles(root *rawxml.Node, profiles []pom.Profile) error {
	el := root.Child("profiles")
	if el == nil {
		return nil
	}
	byID := make(map[string]*pom.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ProfileID()] = &profiles[i]
	}
	for i, profEl := range el.Children("profile") {
		id := strings.TrimSpace(profEl.Child("id").Text())
		if id == "" {
			id = pom.DefaultProfileID
		}
		prof, ok := byID[id]
		if !ok {
			return &DivergenceError{Section: "profiles", Index: i, Document: id}
		}
		if err := s.base("profile:"+id+"/", profEl, &prof.Base); err != nil {
			return err
		}
	}
	return nil
}

func syncDependencies(section string, el *rawxml.Node, deps []pom.Dependency) error {
	return zip(section, el.Elements(), deps, dependencyKey, (*pom.Dependency).ManagementKey,
		func(node *rawxml.Node, d *pom.Dependency) {
			if v := node.Child("version"); v != nil && d.Version != nil {
				setText(v, *d.Version)
			}
		})
}

func syncPlugins(section string, el *rawxml.Node, plugins []pom.Plugin) error {
	return zip(section, el.Elements(), plugins, pluginKey, (*pom.Plugin).Key,
		func(node *rawxml.Node, p *pom.Plugin) {
			if v := node.Child("version"); v != nil && p.Version != nil {
				setText(v, *p.Version)
			}
		})
}

// zip walks nodes and items together, checking that each pair has the same
// key before calling fn. Nothing is applied when the lengths differ.
func zip[T any](section string, nodes []*rawxml.Node, items []T,
	nodeKey func(*rawxml.Node) string, itemKey func(*T) string, fn func(*rawxml.Node, *T)) error {
	if len(nodes) != len(items) {
		return &DivergenceError{
			Section:  section,
			Index:    -1,
			Document: strconv.Itoa(len(nodes)),
			Model:    strconv.Itoa(len(items)),
		}
	}
	for i, node := range nodes {
		item := &items[i]
		if dk, mk := nodeKey(node), itemKey(item); dk != mk {
			return &DivergenceError{Section: section, Index: i, Document: dk, Model: mk}
		}
		fn(node, item)
	}
	return nil
}

func dependencyKey(el *rawxml.Node) string {
	var classifier *string
	if c := el.Child("classifier"); c != nil {
		v := strings.TrimSpace(c.Text())
		classifier = &v
	}
	return pom.ManagementKey(childText(el, "groupId"), childText(el, "artifactId"), childText(el, "type"), classifier)
}

func pluginKey(el *rawxml.Node) string {
	return pom.PluginKey(childText(el, "groupId"), childText(el, "artifactId"))
}

func childText(el *rawxml.Node, name string) string {
	return strings.TrimSpace(el.Child(name).Text())
}

// setText writes v unless the element already holds it, ignoring
// surrounding whitespace.
func setText(el *rawxml.Node, v string) {
	if strings.TrimSpace(el.Text()) == v {
		return
	}
	el.SetText(v)
}
