package cli

import (
	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show ranked standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Standing
			if err := client.Get(cmd.Context(), "/api/v1/leaderboard", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
