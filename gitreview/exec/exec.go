// Package exec provides subprocess execution helpers.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes a command in a directory and returns
// its standard output. Implementations must not treat
// stderr as output.
type Runner interface {
	Run(dir string, name string, arg ...string) (string, error)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(
	dir string,
	name string,
	arg ...string,
) (string, error)

// Run calls f.
func (f RunnerFunc) Run(
	dir string,
	name string,
	arg ...string,
) (string, error) {
	return f(dir, name, arg...)
}

// Default is the Runner backed by Ex.
var Default Runner = RunnerFunc(Ex)

// Ex executes the named command in the given directory and
// returns its stdout. A non-zero exit status is returned as
// an error carrying stderr; stdout is returned in both
// cases. Pass empty dir to use the current working
// directory.
func Ex(
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Debug(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := exec.CommandContext(context.Background(), name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	slog.Debug("output", "result", stdout.String())

	if err != nil {
		return stdout.String(), fmt.Errorf(
			"%s: %s %s: %w: %s",
			errCtx, name, strings.Join(arg, " "), err,
			strings.TrimSpace(stderr.String()),
		)
	}

	return stdout.String(), nil
}
