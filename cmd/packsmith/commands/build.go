package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/packsmith/internal/app"
	"go.trai.ch/packsmith/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <pack[@range]>...",
		Short: "Build a merged archive from packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeFlag(cmd)
			if err != nil {
				return err
			}
			platform, _ := cmd.Flags().GetString("platform")
			opts := buildOptions(cmd)
			opts.Request = domain.BuildRequest{
				Packages:        args,
				PlatformVersion: platform,
				Mode:            mode,
			}
			return c.build(cmd, opts)
		},
	}
	cmd.Flags().StringP("platform", "p", "", "Target platform version (default inferred or latest)")
	addOutputFlags(cmd)
	return cmd
}

func (c *CLI) newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle <id> [version]",
		Short: "Build a merged archive from a bundle",
		Long:  "Build a bundle version. The version may be exact or a range; the newest match is built.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeFlag(cmd)
			if err != nil {
				return err
			}
			opts := buildOptions(cmd)
			opts.Request = domain.BuildRequest{Mode: mode}
			opts.Bundle = args[0]
			if len(args) == 2 {
				opts.BundleVersion = args[1]
			}
			return c.build(cmd, opts)
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func (c *CLI) build(cmd *cobra.Command, opts app.BuildOptions) error {
	manifest, path, err := c.app.Build(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if path == "-" {
		// The archive owns stdout.
		printManifest(cmd.ErrOrStderr(), "stdout", manifest)
		return nil
	}
	printManifest(cmd.OutOrStdout(), path, manifest)
	return nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("mode", "m", string(domain.ModeBoth), "Artifacts to merge: primary, secondary or both")
	cmd.Flags().StringP("output", "o", "", "Archive path, - for stdout (default the archive name)")
	cmd.Flags().StringP("token", "t", "", "Caller token for usage accounting")
}

func modeFlag(cmd *cobra.Command) (domain.Mode, error) {
	raw, _ := cmd.Flags().GetString("mode")
	return domain.ParseMode(raw)
}

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	output, _ := cmd.Flags().GetString("output")
	token, _ := cmd.Flags().GetString("token")
	return app.BuildOptions{
		Token:  token,
		Output: output,
		Stdout: cmd.OutOrStdout(),
	}
}
