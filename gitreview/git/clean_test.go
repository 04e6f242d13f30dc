package git_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/git_review/gitreview/git"
)

func TestRepo_CleanSingle_keeps_unmerged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	initGitRepo(t, dir)

	gitCmd(t, dir, "checkout", "-b", "pr/5")
	commitFile(t, dir, "work.txt", "work")
	gitCmd(t, dir, "checkout", "main")

	rp := git.Open(dir)
	require.True(t, rp.UnmergedCommits("pr/5"))

	rep, err := rp.CleanSingle(5, false)

	require.NoError(t, err)
	assert.Equal(t, []string{"pr/5"}, rep.Skipped)
	assert.Empty(t, rep.Deleted)
	assert.True(t, rp.BranchExists(git.Local, "pr/5"))
}

func TestRepo_CleanSingle_force_discards(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	initGitRepo(t, dir)

	gitCmd(t, dir, "checkout", "-b", "pr/5")
	commitFile(t, dir, "work.txt", "work")
	gitCmd(t, dir, "checkout", "main")

	rp := git.Open(dir)

	rep, err := rp.CleanSingle(5, true)

	require.NoError(t, err)
	assert.Equal(t, []string{"pr/5"}, rep.Discarded)
	assert.False(t, rp.BranchExists(git.Local, "pr/5"))
}

func TestRepo_CleanSingle_deletes_merged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	initGitRepo(t, dir)

	gitCmd(t, dir, "branch", "pr/3")
	gitCmd(t, dir, "branch", "review/3")

	rp := git.Open(dir)

	rep, err := rp.CleanSingle(3, false)

	require.NoError(t, err)
	assert.Equal(t, []string{"pr/3", "review/3"}, rep.Deleted)
	assert.False(t, rp.BranchExists(git.Local, "pr/3"))
	assert.False(t, rp.BranchExists(git.Local, "review/3"))
}

func TestRepo_CleanSingle_leaves_checked_out_branch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	initGitRepo(t, dir)

	gitCmd(t, dir, "checkout", "-b", "pr/8")

	rp := git.Open(dir)

	rep, err := rp.CleanSingle(8, false)

	require.NoError(t, err)
	assert.Equal(t, []string{"pr/8"}, rep.Deleted)

	current, err := rp.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", current)
}

func TestRepo_CleanSingle_no_branch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	initGitRepo(t, dir)

	rep, err := git.Open(dir).CleanSingle(99, false)

	require.NoError(t, err)
	assert.True(t, rep.Empty())
}

func TestRepo_CleanAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	initGitRepo(t, dir)

	gitCmd(t, dir, "branch", "pr/1")
	gitCmd(t, dir, "branch", "review/done")
	gitCmd(t, dir, "branch", "feature/untouched")
	gitCmd(t, dir, "checkout", "-b", "pr/2")
	commitFile(t, dir, "open.txt", "open")
	gitCmd(t, dir, "checkout", "main")

	rp := git.Open(dir)

	rep, err := rp.CleanAll(false)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pr/1", "review/done"}, rep.Deleted)
	assert.Equal(t, []string{"pr/2"}, rep.Skipped)
	assert.True(t, rp.BranchExists(git.Local, "pr/2"))
	assert.True(t, rp.BranchExists(git.Local, "feature/untouched"))

	rep, err = rp.CleanAll(true)

	require.NoError(t, err)
	assert.Equal(t, []string{"pr/2"}, rep.Discarded)
	assert.False(t, rp.BranchExists(git.Local, "pr/2"))
}

func TestRepo_CleanAll_prunes_origin(t *testing.T) {
	t.Parallel()

	remote := t.TempDir()
	gitCmd(t, remote, "init", "--bare", "-b", "main")

	dir := t.TempDir()

	initGitRepo(t, dir)
	gitCmd(t, dir, "remote", "add", "origin", remote)
	gitCmd(t, dir, "push", "origin", "main")
	gitCmd(t, dir, "push", "origin", "main:gone")
	gitCmd(t, dir, "fetch", "origin")

	rp := git.Open(dir)
	require.True(t, rp.BranchExists(git.Remote, "gone"))

	gitCmd(t, remote, "branch", "-D", "gone")

	_, err := rp.CleanAll(false)

	require.NoError(t, err)
	assert.False(t, rp.BranchExists(git.Remote, "gone"))
}

func TestCleanReport_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, git.CleanReport{}.Empty())
	assert.False(t, git.CleanReport{Skipped: []string{"pr/1"}}.Empty())
}
