package git

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gitver/internal/testutil"
)

func TestLoad_EmptyRepository(t *testing.T) {
	repo := testutil.NewRepo(t)

	sit, err := Load(context.Background(), repo.Dir, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, repo.Dir, sit.RootDir)
	assert.Equal(t, ZeroCommit, sit.Head)
	assert.Equal(t, int64(0), sit.Timestamp.Unix())
	assert.Equal(t, "main", sit.Branch)
	assert.Empty(t, sit.Tags)
	assert.True(t, sit.Clean)

	d, err := sit.Describe(nil)
	require.NoError(t, err)
	assert.Equal(t, "root", d.Tag)
	assert.Equal(t, 0, d.Distance)
}

func TestLoad_BranchTagsAndDirty(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.WriteFile("a.txt", "a")
	head := repo.Commit("first")
	repo.Git("tag", "1.10.0")
	repo.Git("tag", "-a", "-m", "annotated", "1.2.0")

	sit, err := Load(context.Background(), repo.Dir, nil)
	require.NoError(t, err)

	assert.Equal(t, head, sit.Head)
	assert.Equal(t, "main", sit.Branch)
	assert.False(t, sit.IsDetached())
	assert.ElementsMatch(t, []string{"1.10.0", "1.2.0"}, sit.Tags)
	assert.True(t, sit.Clean)
	assert.True(t, time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC).Equal(sit.Timestamp))

	repo.WriteFile("a.txt", "changed")
	sit, err = Load(context.Background(), repo.Dir, nil)
	require.NoError(t, err)
	assert.False(t, sit.Clean)
}

func TestLoad_Detached(t *testing.T) {
	repo := testutil.NewRepo(t)
	head := repo.Commit("first")
	repo.Git("checkout", "-q", "--detach", head)

	sit, err := Load(context.Background(), repo.Dir, nil)
	require.NoError(t, err)
	assert.True(t, sit.IsDetached())
	assert.Equal(t, "", sit.BranchName())
}

func TestLoad_NotARepository(t *testing.T) {
	testutil.NewRepo(t) // skips without git
	_, err := Load(context.Background(), t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestDescribe(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.Commit("one")
	repo.Git("tag", "v1.0.0")
	repo.Git("tag", "-a", "-m", "release", "release-7")
	repo.Commit("two")
	head := repo.Commit("three")

	sit, err := Load(context.Background(), repo.Dir, nil)
	require.NoError(t, err)

	d, err := sit.Describe(regexp.MustCompile(`^(?:v.*)$`))
	require.NoError(t, err)
	assert.Equal(t, Description{Commit: head, Tag: "v1.0.0", Distance: 2}, d)

	d, err = sit.Describe(regexp.MustCompile(`^(?:release-.*)$`))
	require.NoError(t, err)
	assert.Equal(t, "release-7", d.Tag)

	d, err = sit.Describe(regexp.MustCompile(`^(?:nomatch)$`))
	require.NoError(t, err)
	assert.Equal(t, "root", d.Tag)
	assert.Equal(t, 2, d.Distance, "depth of the root commit")
}

func TestDescribe_SingleCommitWithoutTag(t *testing.T) {
	repo := testutil.NewRepo(t)
	head := repo.Commit("only")

	sit, err := Load(context.Background(), repo.Dir, nil)
	require.NoError(t, err)

	d, err := sit.Describe(nil)
	require.NoError(t, err)
	assert.Equal(t, Description{Commit: head, Tag: "root", Distance: 0}, d)
	assert.Equal(t, "root-0-g"+head[:7], d.String())
}
