// Package cli implements the dw command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configFile  string
	settingsDir string
	verbose     bool
}

// NewRootCmd creates the top-level "dw" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp(defaultDeps()))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "dw",
		Short: "Cycle desktop wallpapers from a list of images and folders",
		Long: "dw keeps a list of wallpaper candidates, image files or directories of\n" +
			"images, and steps through them on demand or on a schedule.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "dw":
				return nil
			}
			return a.setup(cmd)
		},
		// Errors are printed once by execute.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configFile, "config", "", "state file (default: ./config/config.json)")
	root.PersistentFlags().StringVar(&a.flags.settingsDir, "settings-dir", "", "directory holding settings.yaml (default: $XDG_CONFIG_HOME/dw)")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usagef(err)
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newSetCmd(a),
		newNextCmd(a),
		newPreviousCmd(a),
		newResetCmd(a),
		newCurrentCmd(a),
		newOnCmd(a),
		newOffCmd(a),
		newPresetCmd(a),
		newShowConfigCmd(a),
		newSetConfigCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the code for its result.
func Execute() {
	res := execute(NewRootCmd())
	os.Exit(res.ExitCode)
}

func execute(root *cobra.Command) Result {
	res := ResultFor(root.Execute())
	if !res.Success {
		fmt.Fprintf(root.ErrOrStderr(), "dw: %s\n", res.Message)
		if res.ExitCode == exitUserError {
			fmt.Fprintln(root.ErrOrStderr(), "Run 'dw --help' for usage.")
		}
	}
	return res
}

func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usagef(err)
		}
		return nil
	}
}
