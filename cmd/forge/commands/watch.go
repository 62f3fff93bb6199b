package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/forge/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [targets...]",
		Short: "Build the targets and rebuild whenever the project changes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return nil
			}
			jobs, _ := cmd.Flags().GetInt("jobs")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			return c.app.Watch(cmd.Context(), args, app.RunOptions{
				Jobs:    jobs,
				NoCache: noCache,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of rules building concurrently (default: one per CPU)")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the artifact cache and force execution")
	return cmd
}
