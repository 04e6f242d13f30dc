package exec_test

import (
	"testing"

	"github.com/byte4ever/git_review/gitreview/exec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEx_success(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex("", "echo", "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestEx_with_dir(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex("/tmp", "pwd")

	require.NoError(t, err)
	assert.Contains(t, out, "/tmp")
}

func TestEx_failure(t *testing.T) {
	t.Parallel()

	_, err := exec.Ex("", "false")

	assert.Error(t, err)
}

func TestEx_stderr_not_in_output(t *testing.T) {
	t.Parallel()

	out, err := exec.Ex(
		"", "sh", "-c", "echo visible; echo hidden >&2; exit 3",
	)

	require.Error(t, err)
	assert.Equal(t, "visible\n", out)
	assert.ErrorContains(t, err, "hidden")
}

func TestRunnerFunc_Run(t *testing.T) {
	t.Parallel()

	var gotDir, gotName string

	var gotArgs []string

	rn := exec.RunnerFunc(
		func(
			dir string,
			name string,
			arg ...string,
		) (string, error) {
			gotDir = dir
			gotName = name
			gotArgs = arg

			return "ok", nil
		},
	)

	out, err := rn.Run("/repo", "git", "status")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "/repo", gotDir)
	assert.Equal(t, "git", gotName)
	assert.Equal(t, []string{"status"}, gotArgs)
}

func TestDefault_runs_commands(t *testing.T) {
	t.Parallel()

	out, err := exec.Default.Run("", "echo", "ok")

	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}
