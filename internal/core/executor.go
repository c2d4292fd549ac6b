package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the wall-clock limit for a single command.
	DefaultTimeout = 60 * time.Second

	// waitDelay bounds how long Wait may block on pipes held open by
	// orphaned children after the shell itself has been killed.
	waitDelay = 2 * time.Second
)

// Runner runs a shell command in a directory.
type Runner interface {
	Execute(ctx context.Context, command, dir string) (*Result, error)
}

// Executor runs command text through a shell interpreter.
type Executor struct {
	shell   string
	timeout time.Duration
}

// NewExecutor creates a new executor. An empty shell selects the platform
// default; a non-positive timeout selects DefaultTimeout.
func NewExecutor(shell string, timeout time.Duration) *Executor {
	if shell == "" {
		shell = DefaultShell()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		shell:   shell,
		timeout: timeout,
	}
}

// DefaultShell returns the interpreter used when none is configured.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	return "/bin/sh"
}

// Timeout returns the configured limit.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Result represents command execution result
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns stdout followed by stderr, or a placeholder carrying the
// exit code when the command printed nothing.
func (r *Result) Output() string {
	output := r.Stdout + r.Stderr
	if output == "" {
		return fmt.Sprintf("(exit code: %d)", r.ExitCode)
	}
	return output
}

// Execute runs command with dir as its working directory. A non-zero exit
// status is not an error. Running past the timeout yields ErrTimedOut with no
// output; failing to start yields ErrExecutionFailed.
func (e *Executor) Execute(ctx context.Context, command, dir string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, e.shell, shellFlag(e.shell), command)
	execCmd.Dir = dir
	configureProcess(execCmd)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrTimedOut, e.timeout)
	}

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) && exitError.ExitCode() >= 0 {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	return result, nil
}

func shellFlag(shell string) string {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(shell)), ".exe")
	if name == "cmd" {
		return "/C"
	}
	return "-c"
}
