package scheduler

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// Schtasks manages a Windows scheduled task.
type Schtasks struct {
	Runner shell.Runner
}

func (s *Schtasks) Name() string { return "schtasks" }

// Enable creates the task, replacing an existing one.
func (s *Schtasks) Enable(ctx context.Context, tc types.TimeConfig, action Action) error {
	args, err := SchtasksCreateArgs(tc, JobName, action)
	if err != nil {
		return err
	}
	if _, err := s.Runner.Run(ctx, shell.Command{Name: "schtasks", Args: args}); err != nil {
		return commandFailed(err)
	}
	return nil
}

// Disable deletes the task. A missing task is not an error.
func (s *Schtasks) Disable(ctx context.Context) error {
	enabled, err := s.Enabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	if _, err := s.Runner.Run(ctx, shell.Command{Name: "schtasks", Args: []string{"/delete", "/tn", JobName, "/f"}}); err != nil {
		return commandFailed(err)
	}
	return nil
}

// Enabled queries the task.
func (s *Schtasks) Enabled(ctx context.Context) (bool, error) {
	_, err := s.Runner.Run(ctx, shell.Command{Name: "schtasks", Args: []string{"/query", "/tn", JobName}})
	if err == nil {
		return true, nil
	}
	var cerr *shell.CommandError
	if errors.As(err, &cerr) && cerr.ExitStatus == 1 {
		return false, nil
	}
	return false, commandFailed(err)
}
