package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dw/internal/cycle"
	"github.com/mesh-intelligence/dw/pkg/types"
)

type moveFunc func(n *cycle.Navigator, cfg types.Config) (types.CurrentWallpaper, error)

func newNextCmd(a *app) *cobra.Command {
	return newMoveCmd(a, "next", "Show the next wallpaper of the cycle", (*cycle.Navigator).Next)
}

func newPreviousCmd(a *app) *cobra.Command {
	return newMoveCmd(a, "previous", "Show the previous wallpaper of the cycle", (*cycle.Navigator).Previous)
}

func newResetCmd(a *app) *cobra.Command {
	return newMoveCmd(a, "reset", "Go back to the first wallpaper of the cycle", (*cycle.Navigator).Reset)
}

func newMoveCmd(a *app, use, short string, move moveFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			next, err := move(a.navigator(), cfg)
			if err != nil {
				return err
			}
			a.log.Debug("moved", "from", cfg.ActualWallpaper.Path, "to", next.Path, "index", next.Index, "sub_index", next.SubIndex)

			// The pointer only advances once the desktop took the image.
			if err := a.apply(cmd.Context(), next.Path, use); err != nil {
				return err
			}
			cfg.ActualWallpaper = next
			if err := a.store.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wallpaper set to %s\n", next.Path)
			return nil
		},
	}
}

func newCurrentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current wallpaper",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := cfg.ActualWallpaper
			if w.IsUnset() {
				fmt.Fprintln(out, "No wallpaper applied yet (run `dw next`)")
				return nil
			}

			fmt.Fprintln(out, w.Path)
			fmt.Fprintf(out, "  set %s\n", humanize.RelTime(w.DateSet, a.now(), "ago", "from now"))
			if w.Index >= 0 && w.Index < len(cfg.Candidates) {
				fmt.Fprintf(out, "  candidate %d of %d", w.Index+1, len(cfg.Candidates))
				if w.Child {
					fmt.Fprintf(out, ", image %d in %s", w.SubIndex+1, filepath.Clean(cfg.Candidates[w.Index]))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
