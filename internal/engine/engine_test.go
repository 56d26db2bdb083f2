package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gitver/internal/docsync"
	"github.com/leapstack-labs/gitver/internal/git"
	"github.com/leapstack-labs/gitver/internal/pom"
	"github.com/leapstack-labs/gitver/internal/refs"
	"github.com/leapstack-labs/gitver/internal/related"
	"github.com/leapstack-labs/gitver/internal/testutil"
)

const headCommit = "0123456789abcdef0123456789abcdef01234567"

type fixture struct {
	dir     string
	root    string
	module  string
	rootXML string
	modXML  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, StateDirName), 0o750))

	f := fixture{dir: dir}
	f.rootXML = testutil.Pom{
		Group: "com.example", Artifact: "root", Version: "1.0.0",
		Modules: []string{"a"},
	}.String()
	f.modXML = testutil.Pom{
		Artifact: "a", Version: "1.0.0",
		Parent: &testutil.PomParent{Group: "com.example", Artifact: "root", Version: "1.0.0"},
		Body: `  <dependencies>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>root</artifactId>
      <version>1.0.0</version>
    </dependency>
    <dependency>
      <groupId>org.other</groupId>
      <artifactId>ext</artifactId>
      <version>2.0</version>
    </dependency>
  </dependencies>
`,
	}.String()
	f.root = testutil.WriteFile(t, filepath.Join(dir, "pom.xml"), f.rootXML)
	f.module = testutil.WriteFile(t, filepath.Join(dir, "a", "pom.xml"), f.modXML)
	return f
}

func (f fixture) situation(branch string) SituationFunc {
	return func(context.Context, string, *slog.Logger) (git.Situation, error) {
		return git.Situation{
			RootDir:   f.dir,
			Head:      headCommit,
			Timestamp: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
			Branch:    branch,
			Clean:     true,
		}, nil
	}
}

func (f fixture) config() Config {
	return Config{
		StateDir: filepath.Join(f.dir, StateDirName),
		Refs: refs.Config{Rules: []refs.Rule{{
			Kind:    refs.KindBranch,
			Pattern: refs.MustCompilePattern("main"),
			Version: "${ref}-SNAPSHOT",
		}}},
		LookupEnv: func(string) (string, bool) { return "", false },
	}
}

func (f fixture) build(t *testing.T, cfg Config, branch string, opts ...Option) *Build {
	t.Helper()
	opts = append([]Option{
		WithLogger(testutil.NewTestLogger(t)),
		WithSituation(f.situation(branch)),
	}, opts...)
	return New(cfg, opts...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApply_WritesSidecars(t *testing.T) {
	f := newFixture(t)
	b := f.build(t, f.config(), "main")

	report, err := b.Apply(context.Background(), f.root)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, f.root, report.Results[0].File, "parents come first")
	assert.Equal(t, f.module, report.Results[1].File)

	for _, res := range report.Results {
		assert.Equal(t, SkipNone, res.Skip)
		assert.Equal(t, "main-SNAPSHOT", res.Version())
		assert.Equal(t, "1.0.0", res.Original.Version)
	}

	rootSidecar := filepath.Join(f.dir, SidecarName)
	modSidecar := filepath.Join(f.dir, "a", SidecarName)
	assert.ElementsMatch(t, []string{rootSidecar, modSidecar}, report.Written)

	assert.Equal(t, strings.ReplaceAll(f.rootXML, "1.0.0", "main-SNAPSHOT"), readFile(t, rootSidecar))
	assert.Equal(t, strings.ReplaceAll(f.modXML, "1.0.0", "main-SNAPSHOT"), readFile(t, modSidecar))
	assert.Contains(t, readFile(t, modSidecar), "<version>2.0</version>", "unrelated dependency keeps its version")

	assert.Equal(t, f.rootXML, readFile(t, f.root), "original left alone")
	assert.Equal(t, f.modXML, readFile(t, f.module))
}

func TestApply_UpdatesOriginals(t *testing.T) {
	tests := []struct {
		name   string
		global bool
		rule   *bool
		option *bool
		want   bool
	}{
		{name: "default off", want: false},
		{name: "global", global: true, want: true},
		{name: "rule beats global", global: true, rule: ptr(false), want: false},
		{name: "option beats rule", rule: ptr(false), option: ptr(true), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cfg := f.config()
			cfg.UpdatePom = tt.global
			cfg.UpdatePomOption = tt.option
			cfg.Refs.Rules[0].UpdatePom = tt.rule

			report, err := f.build(t, cfg, "main").Apply(context.Background(), f.root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.State.UpdatePom)

			if tt.want {
				assert.Contains(t, readFile(t, f.root), "main-SNAPSHOT")
				assert.Len(t, report.Written, 4)
			} else {
				assert.Equal(t, f.rootXML, readFile(t, f.root))
				assert.Len(t, report.Written, 2)
			}
		})
	}
}

func TestApply_Skips(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t)
		cfg := f.config()
		cfg.Disable = true
		called := false
		b := New(cfg, WithSituation(func(context.Context, string, *slog.Logger) (git.Situation, error) {
			called = true
			return git.Situation{}, nil
		}))

		report, err := b.Apply(context.Background(), f.root)
		require.NoError(t, err)
		assert.Equal(t, SkipDisabled, report.State.Skip)
		assert.False(t, called, "git is never consulted")
		assert.Empty(t, report.Written)
		assert.NoFileExists(t, filepath.Join(f.dir, SidecarName))
	})

	t.Run("no matching rule", func(t *testing.T) {
		f := newFixture(t)
		logger, logs := testutil.NewCapturingLogger()
		b := f.build(t, f.config(), "develop", WithLogger(logger))

		report, err := b.Apply(context.Background(), f.root)
		require.NoError(t, err)
		assert.Equal(t, SkipNoMatch, report.State.Skip)
		require.Len(t, report.Results, 1)
		assert.Equal(t, SkipNoMatch, report.Results[0].Skip)
		assert.Equal(t, "1.0.0", report.Results[0].Version())
		assert.Empty(t, report.Written)
		assert.Contains(t, logs.String(), "branch=develop")
		assert.Contains(t, logs.String(), "pattern=main")
	})

	t.Run("rev fallback", func(t *testing.T) {
		f := newFixture(t)
		cfg := f.config()
		cfg.Refs.Rev = &refs.Rule{Version: "${commit.short}"}

		report, err := f.build(t, cfg, "develop").Apply(context.Background(), f.root)
		require.NoError(t, err)
		assert.Equal(t, refs.KindCommit, report.State.Match.Kind())
		assert.Equal(t, "0123456", report.Results[0].Version())
	})
}

func TestProcess_UnrelatedAndVersionless(t *testing.T) {
	f := newFixture(t)
	other := testutil.WriteFile(t, filepath.Join(f.dir, "other", "pom.xml"),
		testutil.Pom{Group: "org.other", Artifact: "other", Version: "3.0"}.String())
	bare := testutil.WriteFile(t, filepath.Join(f.dir, "bare", "pom.xml"),
		testutil.Pom{Group: "org.other", Artifact: "bare"}.String())

	b := f.build(t, f.config(), "main")
	ctx := context.Background()

	_, err := b.Process(ctx, f.root)
	require.NoError(t, err)

	res, err := b.Process(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, SkipUnrelated, res.Skip)
	assert.Nil(t, res.Document)
	assert.Equal(t, "3.0", res.Version())

	res, err = b.Process(ctx, bare)
	require.NoError(t, err)
	assert.Equal(t, SkipNoVersion, res.Skip)
}

func TestProcess_CachesByCanonicalPath(t *testing.T) {
	f := newFixture(t)
	var loads atomic.Int32
	loader := related.LoaderFunc(func(path string) (*pom.Project, error) {
		if path == f.module {
			loads.Add(1)
		}
		return pom.Read(path)
	})
	b := f.build(t, f.config(), "main", WithLoader(loader))
	ctx := context.Background()

	_, err := b.Process(ctx, f.root)
	require.NoError(t, err)
	before := loads.Load()

	first, err := b.Process(ctx, f.module)
	require.NoError(t, err)
	second, err := b.Process(ctx, filepath.Join(f.dir, "a", "..", "a", "pom.xml"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, before+1, loads.Load())
}

func TestProcess_ConcurrentFirstAccess(t *testing.T) {
	f := newFixture(t)
	var resolves atomic.Int32
	situation := f.situation("main")
	b := f.build(t, f.config(), "main", WithSituation(func(ctx context.Context, dir string, l *slog.Logger) (git.Situation, error) {
		resolves.Add(1)
		return situation(ctx, dir, l)
	}))
	ctx := context.Background()

	const workers = 16
	paths := []string{f.root, f.module}
	results := make([]*Result, workers)
	states := make([]*State, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i], errs[i] = b.Process(ctx, paths[i%len(paths)])
			if errs[i] == nil {
				states[i], errs[i] = b.State(ctx)
			}
		}()
	}
	close(start)
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Same(t, states[0], states[i], "one state per build")
		assert.Same(t, results[i%len(paths)], results[i], "one result per path")
		assert.Equal(t, "main-SNAPSHOT", results[i].Version())
	}
	assert.Equal(t, int32(1), resolves.Load(), "situation is resolved once")
	assert.NotNil(t, b.Closure(), "closure is computed during first access")
}

func TestApply_DivergenceWritesNothing(t *testing.T) {
	f := newFixture(t)
	loader := related.LoaderFunc(func(path string) (*pom.Project, error) {
		p, err := pom.Read(path)
		if err != nil || path != f.module {
			return p, err
		}
		v := "1.0"
		p.Dependencies = append(p.Dependencies, pom.Dependency{GroupID: "org.extra", ArtifactID: "extra", Version: &v})
		return p, nil
	})
	b := f.build(t, f.config(), "main", WithLoader(loader))

	_, err := b.Apply(context.Background(), f.root)
	require.Error(t, err)

	var div *docsync.DivergenceError
	require.True(t, errors.As(err, &div), "got %v", err)
	assert.Equal(t, "dependencies", div.Section)
	assert.Equal(t, -1, div.Index)

	assert.NoFileExists(t, filepath.Join(f.dir, SidecarName))
	assert.NoFileExists(t, filepath.Join(f.dir, "a", SidecarName))
}

func TestState_SituationError(t *testing.T) {
	f := newFixture(t)
	b := New(f.config(), WithSituation(func(context.Context, string, *slog.Logger) (git.Situation, error) {
		return git.Situation{}, errors.New("not a repository")
	}))

	_, err := b.State(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a repository")
}

func TestState_RefOverrides(t *testing.T) {
	f := newFixture(t)
	cfg := f.config()
	tag := "v1.2.3"
	cfg.RefOptions = git.RefOptions{Tag: &tag}
	cfg.Refs.Rules = append(cfg.Refs.Rules, refs.Rule{
		Kind:    refs.KindTag,
		Pattern: refs.MustCompilePattern(`v(?<version>.*)`),
		Version: "${ref.version}",
	})

	st, err := f.build(t, cfg, "main").State(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Match)
	assert.Equal(t, refs.KindTag, st.Match.Kind())
	assert.True(t, st.Situation.IsDetached())

	v, _, err := st.Placeholders.Lookup("ref.version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}

func TestFindStateDir(t *testing.T) {
	f := newFixture(t)
	nested := filepath.Join(f.dir, "a", "src", "main")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	got, err := FindStateDir(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, StateDirName), got)

	_, err = FindStateDir(t.TempDir())
	if err != nil {
		assert.ErrorIs(t, err, ErrNoStateDir)
	}
}

func TestKindTitle(t *testing.T) {
	assert.Equal(t, "Branch", KindTitle(refs.KindBranch))
	assert.Equal(t, "Commit", KindTitle(refs.KindCommit))
}

func TestApply_RealRepository(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.WriteFile(".mvn/maven.config", "")
	root := repo.WriteFile("pom.xml", testutil.Pom{Group: "com.example", Artifact: "root", Version: "1.0.0"}.String())
	repo.Commit("initial")
	repo.Git("tag", "v1.0.0")

	cfg := Config{
		StateDir: filepath.Join(repo.Dir, StateDirName),
		Refs: refs.Config{Rules: []refs.Rule{{
			Kind:    refs.KindBranch,
			Pattern: refs.MustCompilePattern("main"),
			Version: "${describe.tag}-${commit.timestamp.datetime}",
		}}},
		LookupEnv: func(string) (string, bool) { return "", false },
	}
	b := New(cfg, WithLogger(testutil.NewTestLogger(t)))

	report, err := b.Apply(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "v1.0.0-20210304.050607", report.Results[0].Version())
	assert.FileExists(t, filepath.Join(repo.Dir, SidecarName))
}

func ptr[T any](v T) *T { return &v }
