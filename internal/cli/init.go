package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the state file and default settings",
		Long: "Create config.json with an empty cycle and a DAY/1 rotation, and a\n" +
			"default settings.yaml. Existing files are left untouched.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.store.Init()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if created {
				fmt.Fprintf(out, "Initialized %s\n", a.store.Path())
			} else {
				fmt.Fprintf(out, "Config already exists at %s\n", a.store.Path())
			}

			wrote, err := writeSettingsIfMissing(a.settingsDir)
			if err != nil {
				// The state file is what matters; settings are optional.
				a.log.Warn("settings file not written", "error", err)
				return nil
			}
			if wrote {
				a.log.Info("wrote default settings", "dir", a.settingsDir)
			}
			return nil
		},
	}
}
