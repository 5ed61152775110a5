package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Save and resume in-progress games",
	}

	cmd.AddCommand(newGameSaveCmd())
	cmd.AddCommand(newGameLoadCmd())
	cmd.AddCommand(newGameDiscardCmd())

	return cmd
}

func newGameSaveCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a game state read from a JSON file",
		Long: `Save a game state for the logged in user.

The file holds a single game state object. Use "-" to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := readGameState(cmd, file)
			if err != nil {
				return err
			}

			var result SavedGame
			body := map[string]any{"gameState": state}
			if err := client.Post(cmd.Context(), "/api/game/save", body, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Game state JSON file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readGameState(cmd *cobra.Command, file string) (*GameState, error) {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var state GameState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to parse game state: %w", err)
	}
	return &state, nil
}

func newGameLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Show the saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *SavedGame
			if err := client.Get(cmd.Context(), "/api/game/load", &result); err != nil {
				return err
			}

			out := output(cmd)
			if result == nil {
				out.PrintMessage("No saved game")
				return nil
			}
			out.Print(*result)
			return nil
		},
	}
}

func newGameDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Delete the saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), "/api/game/save"); err != nil {
				return err
			}

			output(cmd).PrintMessage("Saved game discarded")
			return nil
		},
	}
}
