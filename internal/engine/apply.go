package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Report is the outcome of applying a build.
type Report struct {
	State *State
	// Results are ordered parents first.
	Results []*Result
	// Written lists every file written.
	Written []string
}

// Plan processes root and every related descriptor without writing
// anything.
func (b *Build) Plan(ctx context.Context, root string) (*Report, error) {
	first, err := b.Process(ctx, root)
	if err != nil {
		return nil, err
	}
	st, err := b.State(ctx)
	if err != nil {
		return nil, err
	}
	report := &Report{State: st}
	if st.Skip != SkipNone {
		report.Results = []*Result{first}
		return report, nil
	}

	files := b.relatedFiles()
	if len(files) == 0 {
		files = []string{first.File}
	}

	results := make([]*Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			res, err := b.Process(gctx, f)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Results = results
	return report, nil
}

// Apply plans the build and then writes a sidecar for every patched
// descriptor, and overwrites the original when enabled. Nothing is written
// unless every descriptor was processed successfully.
func (b *Build) Apply(ctx context.Context, root string) (*Report, error) {
	report, err := b.Plan(ctx, root)
	if err != nil {
		return nil, err
	}
	for _, res := range report.Results {
		if res.Document == nil {
			continue
		}
		written, err := b.write(res, report.State.UpdatePom)
		if err != nil {
			return nil, err
		}
		report.Written = append(report.Written, written...)
	}
	return report, nil
}

func (b *Build) write(res *Result, updateOriginal bool) ([]string, error) {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(res.File); err == nil {
		mode = info.Mode().Perm()
	}

	sidecar := res.Sidecar()
	b.logger.Debug("write versioned descriptor", "file", sidecar)
	if err := os.WriteFile(sidecar, res.Document, mode); err != nil {
		return nil, fmt.Errorf("writing %s: %w", sidecar, err)
	}
	written := []string{sidecar}

	if updateOriginal {
		b.logger.Debug("update original descriptor", "file", res.File)
		if err := os.WriteFile(res.File, res.Document, mode); err != nil {
			return nil, fmt.Errorf("updating %s: %w", res.File, err)
		}
		written = append(written, res.File)
	}
	return written, nil
}

// relatedFiles returns the descriptor files of the closure, parents first.
func (b *Build) relatedFiles() []string {
	closure := b.Closure()
	if closure == nil {
		return nil
	}
	nodes, err := closure.Graph.TopologicalSort()
	if err != nil {
		b.logger.Warn("descriptor hierarchy contains a cycle", "error", err)
		nodes = closure.Graph.Nodes()
	}
	var files []string
	for _, n := range nodes {
		if n.Data != "" {
			files = append(files, n.Data)
		}
	}
	return files
}
