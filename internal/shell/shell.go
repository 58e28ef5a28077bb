// Package shell runs external commands with a deadline and reports failures
// as typed errors carrying the exit status and stderr.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a command when the runner has no timeout set.
const DefaultTimeout = 10 * time.Second

// ErrNotInstalled is returned when the command binary is not on PATH.
var ErrNotInstalled = errors.New("command not installed")

// Command is one external invocation.
type Command struct {
	Name  string
	Args  []string
	Stdin []byte
	// Env entries are appended to the current environment.
	Env []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// CommandError is a command that ran and failed.
type CommandError struct {
	Command    string
	ExitStatus int
	Stderr     string
	Err        error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.ExitStatus)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// Exec runs commands on the host.
type Exec struct {
	Timeout time.Duration
}

// Run executes cmd and returns its stdout. A non-zero exit or a timeout
// yields a *CommandError; a missing binary wraps ErrNotInstalled.
func (r Exec) Run(ctx context.Context, cmd Command) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	// Orphaned grandchildren may hold the output pipes open after a kill.
	c.WaitDelay = time.Second
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, cmd.Name)
	}
	if ctx.Err() != nil {
		return nil, &CommandError{
			Command:    cmd.String(),
			ExitStatus: -1,
			Stderr:     fmt.Sprintf("timed out after %s", timeout),
			Err:        ctx.Err(),
		}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &CommandError{
			Command:    cmd.String(),
			ExitStatus: exitErr.ExitCode(),
			Stderr:     strings.TrimSpace(stderr.String()),
			Err:        err,
		}
	}
	return nil, fmt.Errorf("run %s: %w", cmd.Name, err)
}
