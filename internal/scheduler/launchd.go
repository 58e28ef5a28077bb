package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// LaunchdLabel is the LaunchAgent label.
const LaunchdLabel = "com.dw.rotation"

// Launchd manages a per-user LaunchAgent.
type Launchd struct {
	Runner   shell.Runner
	AgentDir string
	UID      int
}

func (l *Launchd) Name() string { return "launchd" }

// PlistPath returns where the agent is installed.
func (l *Launchd) PlistPath() string {
	return filepath.Join(l.AgentDir, LaunchdLabel+".plist")
}

func (l *Launchd) domain() string {
	return fmt.Sprintf("gui/%d", l.UID)
}

// Enable writes the agent and (re)loads it.
func (l *Launchd) Enable(ctx context.Context, tc types.TimeConfig, action Action) error {
	plist, err := LaunchdPlist(tc, LaunchdLabel, action)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.AgentDir, 0o755); err != nil {
		return fmt.Errorf("create launch agent dir: %w", err)
	}
	dest := l.PlistPath()
	if err := os.WriteFile(dest, plist, 0o644); err != nil {
		return fmt.Errorf("write launch agent: %w", err)
	}

	// bootout fails when the agent was not loaded.
	_, _ = l.Runner.Run(ctx, shell.Command{Name: "launchctl", Args: []string{"bootout", l.domain(), dest}})
	if _, err := l.Runner.Run(ctx, shell.Command{Name: "launchctl", Args: []string{"bootstrap", l.domain(), dest}}); err != nil {
		return commandFailed(err)
	}
	return nil
}

// Disable unloads and removes the agent.
func (l *Launchd) Disable(ctx context.Context) error {
	dest := l.PlistPath()
	if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	_, _ = l.Runner.Run(ctx, shell.Command{Name: "launchctl", Args: []string{"bootout", l.domain(), dest}})
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove launch agent: %w", err)
	}
	return nil
}

// Enabled reports whether the agent file is installed.
func (l *Launchd) Enabled(context.Context) (bool, error) {
	_, err := os.Stat(l.PlistPath())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat launch agent: %w", err)
}
