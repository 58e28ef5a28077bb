// Package scheduler registers the periodic `dw next` job with the platform
// task scheduler: cron on Linux and the BSDs, launchd on macOS, and schtasks
// on Windows. Expression builders are pure; registrars shell out through a
// shell.Runner.
package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// JobName identifies the rotation job in every backend.
const JobName = "dw-rotation"

// Action is the command the scheduler runs on every tick.
type Action struct {
	// WorkDir is where the job runs, so relative candidate and config paths
	// resolve the same way as in an interactive shell.
	WorkDir string
	Binary  string
	Args    []string
	// LogFile, when set, receives the job's stdout and stderr.
	LogFile string
}

// NextAction returns the action that advances the cycle.
func NextAction(workDir, binary string, extraArgs ...string) Action {
	return Action{
		WorkDir: workDir,
		Binary:  binary,
		Args:    append(append([]string{}, extraArgs...), "next"),
	}
}

// Scheduler installs and removes the rotation job.
type Scheduler interface {
	Name() string
	Enable(ctx context.Context, tc types.TimeConfig, action Action) error
	Disable(ctx context.Context) error
	Enabled(ctx context.Context) (bool, error)
}

// Options carries the host details some backends need.
type Options struct {
	HomeDir string
	UID     int
}

// For returns the Scheduler for goos.
func For(goos string, runner shell.Runner, opts Options) (Scheduler, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return &Cron{Runner: runner}, nil
	case "darwin":
		return &Launchd{
			Runner:   runner,
			AgentDir: filepath.Join(opts.HomeDir, "Library", "LaunchAgents"),
			UID:      opts.UID,
		}, nil
	case "windows":
		return &Schtasks{Runner: runner}, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedPlatform, goos)
}

func commandFailed(err error) error {
	return fmt.Errorf("%w: %w", types.ErrSchedulerCommandFailed, err)
}

// shellQuote quotes s for POSIX sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
