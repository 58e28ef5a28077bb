package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dw/internal/cycle"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Append an image or a directory of images to the cycle",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			if err := a.lister.CheckCandidate(path); err != nil {
				return err
			}

			out, duplicate := cycle.Add(cfg, path)
			if duplicate {
				a.log.Warn("candidate already in the cycle", "path", path)
			}
			if err := a.store.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d candidates)\n", path, len(out.Candidates))
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a candidate from the cycle",
		Long: "Remove the first candidate equal to <path>. When it was the current\n" +
			"candidate, the state moves to the candidate before it: `dw next` then\n" +
			"shows the one that took its place, while `dw previous` skips the\n" +
			"candidate before it and shows the one preceding that.",
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			out, err := cycle.Remove(cfg, args[0], a.now())
			if err != nil {
				return err
			}
			if err := a.store.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d candidates)\n", args[0], len(out.Candidates))
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <path>",
		Short: "Apply an image without changing the cycle",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.apply(cmd.Context(), args[0], cmd.Name()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wallpaper set to %s\n", args[0])
			return nil
		},
	}
}
