package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dw/pkg/types"
)

func newOnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "on",
		Short: "Rotate the wallpaper automatically",
		Long: "Register `dw next` with the platform scheduler (cron, launchd, or\n" +
			"schtasks) at the configured preset and interval.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			sched, err := a.scheduler()
			if err != nil {
				return err
			}
			action, err := a.nextAction()
			if err != nil {
				return err
			}
			if err := sched.Enable(cmd.Context(), cfg.TimeConfig, action); err != nil {
				return err
			}
			a.log.Info("rotation enabled", "scheduler", sched.Name(), "workdir", action.WorkDir, "binary", action.Binary)
			fmt.Fprintf(cmd.OutOrStdout(), "Rotation enabled: %s (%s)\n", describe(cfg.TimeConfig), sched.Name())
			return nil
		},
	}
}

func newOffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Stop automatic rotation",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := a.scheduler()
			if err != nil {
				return err
			}
			if err := sched.Disable(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rotation disabled (%s)\n", sched.Name())
			return nil
		},
	}
}

func newPresetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preset <minute|hour|day> [interval]",
		Short: "Set the rotation interval",
		Long: "Set the rotation unit and interval (default 1). Valid intervals are\n" +
			"1-59 minutes, 1-23 hours, or 1-31 days. An active schedule is updated.",
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := parseTimeConfig(args)
			if err != nil {
				return err
			}
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			cfg.TimeConfig = tc
			if err := a.store.Save(cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Preset set to %s\n", describe(tc))

			sched, err := a.scheduler()
			if errors.Is(err, types.ErrUnsupportedPlatform) {
				a.log.Debug("no scheduler to refresh", "error", err)
				return nil
			}
			if err != nil {
				return err
			}
			enabled, err := sched.Enabled(cmd.Context())
			if err != nil {
				return fmt.Errorf("preset saved, schedule not checked: %w", err)
			}
			if !enabled {
				return nil
			}
			action, err := a.nextAction()
			if err != nil {
				return err
			}
			if err := sched.Enable(cmd.Context(), tc, action); err != nil {
				return fmt.Errorf("preset saved, schedule not updated: %w", err)
			}
			fmt.Fprintf(out, "Rotation updated (%s)\n", sched.Name())
			return nil
		},
	}
}

func parseTimeConfig(args []string) (types.TimeConfig, error) {
	preset, err := types.ParsePreset(args[0])
	if err != nil {
		return types.TimeConfig{}, err
	}
	interval := 1
	if len(args) == 2 {
		interval, err = strconv.Atoi(args[1])
		if err != nil {
			return types.TimeConfig{}, fmt.Errorf("%w: %q is not a number", types.ErrInvalidInterval, args[1])
		}
	}
	tc := types.TimeConfig{Preset: preset, Interval: interval}
	if err := tc.Validate(); err != nil {
		return types.TimeConfig{}, err
	}
	return tc, nil
}

// describe renders tc as "every 15 minutes".
func describe(tc types.TimeConfig) string {
	unit := strings.ToLower(string(tc.Preset))
	if tc.Interval == 1 {
		return "every " + unit
	}
	return fmt.Sprintf("every %d %ss", tc.Interval, unit)
}
