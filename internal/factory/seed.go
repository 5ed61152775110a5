package factory

import (
	"context"
	"fmt"

	"github.com/mcoot/snakegame-go/internal/model"
)

type seedPlayer struct {
	username string
	email    string
	score    int
	mode     model.GameMode
}

var demoPlayers = []seedPlayer{
	{"SnakeMaster", "snake@master.com", 2450, model.ModeWalls},
	{"NeonViper", "neon@viper.com", 2100, model.ModePassThrough},
	{"RetroGamer", "retro@gamer.com", 1850, model.ModeWalls},
}

// Seed creates the demo players and one score for each through the normal
// services. Players that already exist are left alone, so seeding a
// persistent store twice does not duplicate scores. It returns the number
// of players created.
func Seed(ctx context.Context, app *App, password string) (int, error) {
	created := 0
	for _, p := range demoPlayers {
		_, found, err := app.Credentials.FindByEmail(ctx, p.email)
		if err != nil {
			return created, err
		}
		if found {
			continue
		}

		if _, err := app.Credentials.Create(ctx, p.username, p.email, password); err != nil {
			return created, fmt.Errorf("seed %s: %w", p.username, err)
		}
		if _, err := app.LeaderboardService.SubmitScore(ctx, p.username, p.score, p.mode); err != nil {
			return created, fmt.Errorf("seed score for %s: %w", p.username, err)
		}
		created++
	}
	return created, nil
}
