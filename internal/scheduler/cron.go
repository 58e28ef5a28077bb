package scheduler

import (
	"context"
	"errors"
	"strings"

	"github.com/mesh-intelligence/dw/internal/shell"
	"github.com/mesh-intelligence/dw/pkg/types"
)

// Cron manages a tagged line in the user's crontab.
type Cron struct {
	Runner shell.Runner
}

func (c *Cron) Name() string { return "cron" }

// Enable replaces any dw line in the crontab with one for tc.
func (c *Cron) Enable(ctx context.Context, tc types.TimeConfig, action Action) error {
	line, err := CronLine(tc, action)
	if err != nil {
		return err
	}
	lines, err := c.read(ctx)
	if err != nil {
		return err
	}
	lines = append(withoutTagged(lines), line)
	return c.write(ctx, lines)
}

// Disable removes the dw line. A crontab without one is left untouched.
func (c *Cron) Disable(ctx context.Context) error {
	lines, err := c.read(ctx)
	if err != nil {
		return err
	}
	kept := withoutTagged(lines)
	if len(kept) == len(lines) {
		return nil
	}
	return c.write(ctx, kept)
}

// Enabled reports whether the crontab holds a dw line.
func (c *Cron) Enabled(ctx context.Context) (bool, error) {
	lines, err := c.read(ctx)
	if err != nil {
		return false, err
	}
	return len(withoutTagged(lines)) != len(lines), nil
}

func (c *Cron) read(ctx context.Context) ([]string, error) {
	out, err := c.Runner.Run(ctx, shell.Command{Name: "crontab", Args: []string{"-l"}})
	if err != nil {
		var cerr *shell.CommandError
		if errors.As(err, &cerr) && cerr.ExitStatus == 1 && strings.Contains(strings.ToLower(cerr.Stderr), "no crontab") {
			return nil, nil
		}
		return nil, commandFailed(err)
	}
	text := strings.TrimRight(string(out), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (c *Cron) write(ctx context.Context, lines []string) error {
	data := strings.Join(lines, "\n")
	if data != "" {
		data += "\n"
	}
	if _, err := c.Runner.Run(ctx, shell.Command{Name: "crontab", Args: []string{"-"}, Stdin: []byte(data)}); err != nil {
		return commandFailed(err)
	}
	return nil
}

func withoutTagged(lines []string) []string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasSuffix(strings.TrimSpace(l), cronTag) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}
