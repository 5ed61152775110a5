package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []LeaderboardEntry
			if err := client.Get(cmd.Context(), withMode("/api/leaderboard", mode), &entries); err != nil {
				return err
			}

			output(cmd).Print(entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Filter by game mode: walls, pass-through")
	cmd.AddCommand(newLeaderboardStatsCmd())

	return cmd
}

func newLeaderboardStatsCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show score statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats Stats
			if err := client.Get(cmd.Context(), withMode("/api/leaderboard/stats", mode), &stats); err != nil {
				return err
			}

			output(cmd).Print(stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Filter by game mode: walls, pass-through")

	return cmd
}

func withMode(path, mode string) string {
	if mode == "" {
		return path
	}
	return path + "?" + url.Values{"mode": {mode}}.Encode()
}
