package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/packsmith/internal/ui/style"
)

func (c *CLI) newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove abandoned workspaces and stale artifacts once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := c.app.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s removed %d expired entries\n", style.Success.Render(style.Check), removed)
			return nil
		},
	}
}

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the build result cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove every cached build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			purged, err := c.app.PurgeCache(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s purged %d cached builds\n", style.Success.Render(style.Check), purged)
			return nil
		},
	})
	return cmd
}

func (c *CLI) newUsageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage <pack>",
		Short: "Print download accounting of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, _ := cmd.Flags().GetString("day")
			report, err := c.app.Usage(cmd.Context(), args[0], day)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, style.Heading.Render(args[0]))
			_, _ = fmt.Fprintf(w, "  %s %d\n", style.Muted.Render("total"), report.Total)
			_, _ = fmt.Fprintf(w, "  %s %d\n", style.Muted.Render(report.Daily.Day), report.Daily.Total)
			return nil
		},
	}
	cmd.Flags().StringP("day", "d", "", "Day to report as YYYY-MM-DD (default today, UTC)")
	return cmd
}
