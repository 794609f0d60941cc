package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Runner executes one external command and captures its output. A non-zero
// exit is reported through the exit code, not the error.
type Runner interface {
	Run(ctx context.Context, dir, program string, args ...string) (stdout, stderr string, exitCode int, err error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, program string, args ...string) (string, string, int, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return stdout.String(), stderr.String(), -1, fmt.Errorf("%w: %s: %w", ErrStartFailed, program, err)
	}

	return stdout.String(), stderr.String(), 0, nil
}
