package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/ui/style"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <pack[@range]>...",
		Short: "Print the versions a build would use without building",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, _ := cmd.Flags().GetString("platform")
			res, resolved, err := c.app.Resolve(cmd.Context(), domain.BuildRequest{
				Packages:        args,
				PlatformVersion: platform,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, style.Heading.Render("Platform "+resolved))
			for _, p := range res.Packages {
				line := fmt.Sprintf("%s %s %s", style.Success.Render(style.Dot), p.PackageID, p.Version.Name)
				if p.IsDependency {
					line += style.Muted.Render(" (dependency)")
				}
				_, _ = fmt.Fprintln(w, line)
			}
			for _, ref := range res.Missing {
				_, _ = fmt.Fprintln(w, style.Caution.Render(style.Warning+" missing "+ref.String()))
			}
			for _, conflict := range res.Conflicts {
				_, _ = fmt.Fprintln(w, style.Caution.Render(style.Warning+" conflict "+describeConflict(conflict)))
			}
			return nil
		},
	}
	cmd.Flags().StringP("platform", "p", "", "Target platform version (default inferred or latest)")
	return cmd
}
