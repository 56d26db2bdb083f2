package testutil

import (
	"fmt"
	"strings"
)

// Pom renders a project descriptor for fixtures.
type Pom struct {
	Group    string
	Artifact string
	// Version is omitted when empty.
	Version string
	Parent  *PomParent
	Modules []string
	// Body is inserted verbatim before the closing project tag.
	Body string
}

// PomParent is the parent section of a fixture descriptor.
type PomParent struct {
	Group    string
	Artifact string
	Version  string
	// RelativePath is omitted when nil.
	RelativePath *string
}

// String renders the descriptor.
func (p Pom) String() string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<project xmlns=\"http://maven.apache.org/POM/4.0.0\">\n")
	b.WriteString("  <modelVersion>4.0.0</modelVersion>\n")
	if p.Parent != nil {
		b.WriteString("  <parent>\n")
		fmt.Fprintf(&b, "    <groupId>%s</groupId>\n", p.Parent.Group)
		fmt.Fprintf(&b, "    <artifactId>%s</artifactId>\n", p.Parent.Artifact)
		fmt.Fprintf(&b, "    <version>%s</version>\n", p.Parent.Version)
		if p.Parent.RelativePath != nil {
			fmt.Fprintf(&b, "    <relativePath>%s</relativePath>\n", *p.Parent.RelativePath)
		}
		b.WriteString("  </parent>\n")
	}
	if p.Group != "" {
		fmt.Fprintf(&b, "  <groupId>%s</groupId>\n", p.Group)
	}
	fmt.Fprintf(&b, "  <artifactId>%s</artifactId>\n", p.Artifact)
	if p.Version != "" {
		fmt.Fprintf(&b, "  <version>%s</version>\n", p.Version)
	}
	if len(p.Modules) > 0 {
		b.WriteString("  <modules>\n")
		for _, m := range p.Modules {
			fmt.Fprintf(&b, "    <module>%s</module>\n", m)
		}
		b.WriteString("  </modules>\n")
	}
	b.WriteString(p.Body)
	b.WriteString("</project>\n")
	return b.String()
}
