// Package engine ties resolution, patching and document synchronization
// together for one build. A Build lazily resolves the repository situation,
// the matched rule and the placeholder namespace on first use and caches the
// result of every processed descriptor by canonical path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/gitver/internal/git"
	"github.com/leapstack-labs/gitver/internal/pom"
	"github.com/leapstack-labs/gitver/internal/refs"
	"github.com/leapstack-labs/gitver/internal/related"
)

// StateDirName is the build state directory searched for upwards.
const StateDirName = ".mvn"

// SidecarName is the file a patched descriptor is written to, next to the
// original.
const SidecarName = ".git-versioned-pom.xml"

// Config configures a build.
type Config struct {
	// StateDir is the build state directory.
	StateDir string
	Disable  bool
	Refs     refs.Config
	// UpdatePom is the global default for overwriting original descriptors.
	UpdatePom bool
	// UpdatePomOption overrides rule and global settings when set.
	UpdatePomOption *bool
	// Declared are group/artifact pairs that are always related.
	Declared       []pom.GAV
	UserProperties map[string]string
	Environ        []string
	RefOptions     git.RefOptions
	LookupEnv      git.LookupEnv
}

// SituationFunc loads the repository situation for a directory.
type SituationFunc func(ctx context.Context, dir string, logger *slog.Logger) (git.Situation, error)

// Option configures a Build.
type Option func(*Build)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Build) { b.logger = l }
}

// WithSituation replaces the git-backed situation provider.
func WithSituation(fn SituationFunc) Option {
	return func(b *Build) { b.situation = fn }
}

// WithLoader replaces the descriptor loader.
func WithLoader(l related.Loader) Option {
	return func(b *Build) { b.loader = l }
}

// Build is the per-build context. It is safe for concurrent use.
type Build struct {
	cfg       Config
	logger    *slog.Logger
	situation SituationFunc
	loader    related.Loader

	mu      sync.Mutex
	state   *State
	closure *related.Closure
	results map[string]*Result
	group   singleflight.Group
}

// New creates a build.
func New(cfg Config, opts ...Option) *Build {
	b := &Build{
		cfg:       cfg,
		logger:    slog.New(slog.DiscardHandler),
		situation: git.Load,
		loader:    related.LoaderFunc(pom.Read),
		results:   make(map[string]*Result),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cfg.LookupEnv == nil {
		b.cfg.LookupEnv = os.LookupEnv
	}
	return b
}

// ErrNoStateDir is returned when no build state directory is found.
var ErrNoStateDir = errors.New("build state directory not found")

// FindStateDir returns the nearest StateDirName directory at or above dir.
func FindStateDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for cur := abs; ; {
		candidate := filepath.Join(cur, StateDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%w: no %s directory at or above %s", ErrNoStateDir, StateDirName, abs)
		}
		cur = parent
	}
}
