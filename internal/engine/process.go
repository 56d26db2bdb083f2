package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/gitver/internal/docsync"
	"github.com/leapstack-labs/gitver/internal/patch"
	"github.com/leapstack-labs/gitver/internal/pom"
	"github.com/leapstack-labs/gitver/internal/rawxml"
	"github.com/leapstack-labs/gitver/internal/related"
)

// Result is the outcome of processing one descriptor.
type Result struct {
	// File is the canonical path of the original descriptor.
	File string
	// Original is the identity before patching.
	Original pom.GAV
	// Project is the patched model; nil when skipped.
	Project *pom.Project
	// Document is the patched raw descriptor; nil when skipped.
	Document []byte
	Changes  []patch.Change
	Skip     SkipReason
}

// Sidecar returns the path the patched document is written to.
func (r *Result) Sidecar() string {
	return filepath.Join(filepath.Dir(r.File), SidecarName)
}

// Version returns the patched project version.
func (r *Result) Version() string {
	if r.Project == nil {
		return r.Original.Version
	}
	return r.Project.GAV().Version
}

// Process reads and patches the descriptor at path. Each canonical path is
// processed at most once per build; later calls return the cached result.
func (b *Build) Process(ctx context.Context, path string) (*Result, error) {
	file, err := canonical(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	v, err, _ := b.group.Do(file, func() (any, error) {
		b.mu.Lock()
		cached, ok := b.results[file]
		b.mu.Unlock()
		if ok {
			return cached, nil
		}

		res, err := b.process(ctx, file)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.results[file] = res
		b.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (b *Build) process(ctx context.Context, file string) (*Result, error) {
	project, err := b.loader.Load(file)
	if err != nil {
		return nil, err
	}
	res := &Result{File: file, Original: project.GAV()}
	logger := b.logger.With("file", file)

	st, closure, err := b.prepare(ctx, project)
	if err != nil {
		return nil, err
	}
	if st.Skip != SkipNone {
		res.Skip = st.Skip
		return res, nil
	}
	if !project.HasVersion() {
		logger.Debug("skip project", "reason", SkipNoVersion)
		res.Skip = SkipNoVersion
		return res, nil
	}
	if !closure.Contains(res.Original) {
		logger.Debug("skip project", "reason", SkipUnrelated)
		res.Skip = SkipUnrelated
		return res, nil
	}

	logger.Info("processing project", "gav", res.Original.String())
	patcher := &patch.Patcher{
		Rule:            st.Match.Rule,
		Global:          st.Placeholders,
		Related:         closure,
		BuildProperties: st.BuildProperties,
		Logger:          logger,
	}
	res.Changes, err = patcher.Apply(project)
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", file, err)
	}
	res.Project = project

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	doc, err := rawxml.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	syncer := &docsync.Synchronizer{PropertyNames: propertyNames(st.Match.Rule.Properties)}
	patched, err := syncer.Patch(doc, project)
	if err != nil {
		return nil, fmt.Errorf("synchronizing %s: %w", file, err)
	}
	res.Document = patched.Bytes()
	return res, nil
}

// prepare resolves the build state and, from the first processed project,
// the related-project closure.
func (b *Build) prepare(ctx context.Context, root *pom.Project) (*State, *related.Closure, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.stateLocked(ctx)
	if err != nil {
		return nil, nil, err
	}
	if st.Skip != SkipNone || b.closure != nil {
		return st, b.closure, nil
	}

	closer := &related.Closer{
		StateDir: b.cfg.StateDir,
		RepoRoot: st.Situation.RootDir,
		Declared: b.cfg.Declared,
		Loader:   b.loader,
		Logger:   b.logger,
	}
	closure, err := closer.Close(root)
	if err != nil {
		return nil, nil, err
	}
	b.closure = closure
	return st, closure, nil
}

// Closure returns the related-project closure once a descriptor has been
// processed.
func (b *Build) Closure() *related.Closure {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closure
}

func propertyNames(formats map[string]string) []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	return names
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
