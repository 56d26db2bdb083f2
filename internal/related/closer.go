// Package related computes the set of project descriptors that belong to the
// same build as a root descriptor: its parents, aggregators and modules,
// transitively, restricted to descriptors inside the repository.
package related

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/gitver/internal/dag"
	"github.com/leapstack-labs/gitver/internal/pom"
)

// Loader reads the descriptor at a path.
type Loader interface {
	Load(path string) (*pom.Project, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*pom.Project, error)

// Load calls f.
func (f LoaderFunc) Load(path string) (*pom.Project, error) { return f(path) }

// Closer walks parent and module links starting at a root descriptor.
type Closer struct {
	// StateDir is the build state directory; candidate descriptors must
	// live below its parent.
	StateDir string
	// RepoRoot is the repository root; candidate descriptors must live
	// below it.
	RepoRoot string
	// Declared are group/artifact pairs that are always related.
	Declared []pom.GAV
	Loader   Loader
	Logger   *slog.Logger
}

// Closure is the result of a walk.
type Closure struct {
	Projects pom.Set
	// Graph has one node per walked descriptor, keyed by identity, holding
	// the descriptor path. Declared entries are nodes with an empty path.
	Graph *dag.Graph[string]
}

// Contains reports whether g is related, exactly or by group and artifact
// for declared entries.
func (c *Closure) Contains(g pom.GAV) bool {
	return c.Projects.Contains(g)
}

type walk struct {
	*Closer
	closure  *Closure
	cache    map[string]*pom.Project
	buildDir string
	repoDir  string
}

// Close computes the closure of root.
func (c *Closer) Close(root *pom.Project) (*Closure, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	buildDir, err := canonical(filepath.Dir(c.StateDir))
	if err != nil {
		return nil, fmt.Errorf("resolving build directory: %w", err)
	}
	repoDir, err := canonical(c.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}

	w := &walk{
		Closer:   c,
		closure:  &Closure{Projects: pom.Set{}, Graph: dag.NewGraph[string]()},
		cache:    make(map[string]*pom.Project),
		buildDir: buildDir,
		repoDir:  repoDir,
	}
	if err := w.visit(root); err != nil {
		return nil, err
	}

	for _, d := range c.Declared {
		g := pom.GAV{GroupID: d.GroupID, ArtifactID: d.ArtifactID}.Wildcard()
		w.closure.Projects.Add(g)
		w.closure.Graph.AddNode(g.String(), "")
	}

	logger.Debug("related projects", "count", len(w.closure.Projects))
	for _, g := range w.closure.Projects.Sorted() {
		logger.Debug("related project", "gav", g.String())
	}
	return w.closure, nil
}

func (w *walk) visit(p *pom.Project) error {
	id := p.GAV()
	if w.closure.Projects.Has(id) {
		return nil
	}
	w.closure.Projects.Add(id)
	w.closure.Graph.AddNode(id.String(), p.File)

	if p.Parent != nil {
		if f := p.ParentFile(); w.isRelatedFile(f) {
			parent, err := w.load(f)
			if err != nil {
				return err
			}
			if parent.GAV() == p.Parent.GAV() {
				if err := w.visit(parent); err != nil {
					return err
				}
				w.link(parent, p)
			}
		}
	}

	aggregator, err := w.aggregatorOf(p)
	if err != nil {
		return err
	}
	if aggregator != nil {
		if err := w.visit(aggregator); err != nil {
			return err
		}
		w.link(aggregator, p)
	}

	for _, f := range p.ModuleFiles() {
		if !isFile(f) {
			continue
		}
		module, err := w.load(f)
		if err != nil {
			return err
		}
		if err := w.visit(module); err != nil {
			return err
		}
		w.link(p, module)
	}
	return nil
}

// aggregatorOf returns the descriptor in the parent directory when it
// declares p as one of its modules.
func (w *walk) aggregatorOf(p *pom.Project) (*pom.Project, error) {
	f := filepath.Join(filepath.Dir(p.Dir()), "pom.xml")
	if !w.isRelatedFile(f) {
		return nil, nil
	}
	candidate, err := w.load(f)
	if err != nil {
		return nil, err
	}
	self, err := canonical(p.File)
	if err != nil {
		return nil, nil
	}
	for _, m := range candidate.ModuleFiles() {
		if c, err := canonical(m); err == nil && c == self {
			return candidate, nil
		}
	}
	return nil, nil
}

func (w *walk) link(from, to *pom.Project) {
	a, b := from.GAV().String(), to.GAV().String()
	if a == b {
		return
	}
	_ = w.closure.Graph.AddEdge(a, b)
}

func (w *walk) load(path string) (*pom.Project, error) {
	key, err := canonical(path)
	if err != nil {
		key = path
	}
	if p, ok := w.cache[key]; ok {
		return p, nil
	}
	p, err := w.Loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading related project %s: %w", path, err)
	}
	w.cache[key] = p
	return p, nil
}

// isRelatedFile reports whether path is an existing .xml descriptor inside
// both the build directory and the repository. Published descriptors from
// a local repository end in .pom and live outside the repository.
func (w *walk) isRelatedFile(path string) bool {
	if path == "" || !isFile(path) || !strings.HasSuffix(path, ".xml") {
		return false
	}
	c, err := canonical(path)
	if err != nil {
		return false
	}
	return within(c, w.buildDir) && within(c, w.repoDir)
}

func within(path, dir string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
