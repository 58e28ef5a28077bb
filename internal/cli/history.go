package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dw/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently applied wallpapers",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return usagef(errors.New("--limit must not be negative"))
			}
			out := cmd.OutOrStdout()
			if !a.settings.GetBool(keyHistoryEnabled) {
				fmt.Fprintln(out, "History is disabled (history.enabled: false)")
				return nil
			}
			dbPath, err := a.historyPath()
			if err != nil {
				return err
			}
			h, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer h.Close()

			entries, err := h.List(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No wallpapers applied yet")
				return nil
			}
			now := a.now()
			for _, e := range entries {
				fmt.Fprintf(out, "%-16s %-8s %s\n", humanize.RelTime(e.AppliedAt, now, "ago", "from now"), e.Source, e.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of entries to show (0 for all)")
	return cmd
}
