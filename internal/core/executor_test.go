//go:build unix

package core

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutor_Defaults(t *testing.T) {
	executor := NewExecutor("", 0)
	assert.Equal(t, DefaultTimeout, executor.Timeout())

	executor = NewExecutor("/bin/bash", -time.Second)
	assert.Equal(t, DefaultTimeout, executor.Timeout())

	executor = NewExecutor("", 5*time.Second)
	assert.Equal(t, 5*time.Second, executor.Timeout())
}

func TestExecute_SimpleCommand(t *testing.T) {
	executor := NewExecutor("", 5*time.Second)

	result, err := executor.Execute(context.Background(), "echo hello world", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", result.Output())
	assert.Zero(t, result.ExitCode)
}

func TestExecute_WorkingDirectory(t *testing.T) {
	executor := NewExecutor("", 5*time.Second)
	dir := t.TempDir()

	result, err := executor.Execute(context.Background(), "pwd -P", dir)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(result.Stdout))
}

func TestExecute_StdoutThenStderr(t *testing.T) {
	executor := NewExecutor("", 5*time.Second)

	result, err := executor.Execute(context.Background(), "echo err 1>&2; echo out", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "out\nerr\n", result.Output(), "stdout comes before stderr")
}

func TestExecute_ExitCodePlaceholder(t *testing.T) {
	executor := NewExecutor("", 5*time.Second)

	result, err := executor.Execute(context.Background(), "exit 3", t.TempDir())
	require.NoError(t, err, "non-zero exit must not be an error")
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "(exit code: 3)", result.Output())
}

func TestExecute_ShellFeatures(t *testing.T) {
	executor := NewExecutor("", 5*time.Second)

	result, err := executor.Execute(context.Background(), "printf 'a\\nb\\n' | wc -l", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "2", strings.TrimSpace(result.Stdout))
}

func TestExecute_Timeout(t *testing.T) {
	timeout := 300 * time.Millisecond
	executor := NewExecutor("", timeout)

	started := time.Now()
	result, err := executor.Execute(context.Background(), "echo partial; sleep 5", t.TempDir())
	elapsed := time.Since(started)

	require.ErrorIs(t, err, ErrTimedOut)
	assert.Nil(t, result, "no output on timeout")
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, 4*time.Second, "timeout did not kill the command promptly")
}

func TestExecute_ShellUnavailable(t *testing.T) {
	executor := NewExecutor("/nonexistent/shell-xyz123", 5*time.Second)

	_, err := executor.Execute(context.Background(), "echo hi", t.TempDir())
	assert.ErrorIs(t, err, ErrExecutionFailed)
}

func TestExecute_MissingDirectory(t *testing.T) {
	executor := NewExecutor("", 5*time.Second)

	_, err := executor.Execute(context.Background(), "echo hi", filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, ErrExecutionFailed)
}

func TestShellFlag(t *testing.T) {
	tests := map[string]string{
		"/bin/sh":                         "-c",
		"bash":                            "-c",
		"/usr/local/bin/BASH":             "-c",
		"cmd":                             "/C",
		"cmd.exe":                         "/C",
		"CMD.EXE":                         "/C",
		"Cmd.Exe":                         "/C",
		"/mnt/c/Windows/System32/CMD.EXE": "/C",
	}
	for shell, want := range tests {
		assert.Equal(t, want, shellFlag(shell), "shellFlag(%q)", shell)
	}
}
