package cli

import (
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score commands",
	}

	cmd.AddCommand(newScoreSubmitCmd())

	return cmd
}

func newScoreSubmitCmd() *cobra.Command {
	var (
		score    int
		mode     string
		username string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a finished game's score",
		Long: `Submit a finished game's score to the leaderboard.

Without --user the score is attributed to the logged in user.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				user, err := currentUser(cmd)
				if err != nil {
					return err
				}
				username = user.Username
			}

			body := map[string]any{
				"score":    score,
				"mode":     mode,
				"username": username,
			}

			var result ScoreRecord
			if err := client.Post(cmd.Context(), "/api/leaderboard", body, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&score, "score", "s", 0, "Final score (required)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "walls", "Game mode: walls, pass-through")
	cmd.Flags().StringVarP(&username, "user", "u", "", "Username to attribute the score to")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}
