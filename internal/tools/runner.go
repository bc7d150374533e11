package tools

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
)

// CommandRunner abstracts short-lived command execution with captured output.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// ProcessRunner abstracts foreground execution of a long-lived child process.
// The child inherits the parent's stdio and runs until it exits.
type ProcessRunner interface {
	RunForeground(name string, args ...string) (int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run executes a command, buffering stdout/stderr and normalizing the exit
// code: 0 on success, the child's code on ExitError, 127 when the binary
// could not be started.
func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}
	return stdout.Bytes(), stderr.Bytes(), normalizeExitCode(err), err
}

// RunForeground executes a command wired to the parent's stdio and blocks
// until it exits, returning the child's exit code under the same
// normalization rules as Run.
func (r ExecRunner) RunForeground(name string, args ...string) (int32, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	return normalizeExitCode(err), err
}

func normalizeExitCode(err error) int32 {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return int32(exitErr.ExitCode())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return 127
	}
	return 1
}
