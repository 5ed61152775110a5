package ids

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/mcoot/snakegame-go/internal/model"
)

// Generator produces identifiers and tokens. Mocked in tests.
type Generator interface {
	// UserID returns a fresh UUID v4
	UserID() model.UserID

	// ScoreID returns a fresh ULID
	ScoreID() model.ScoreID

	// SessionToken returns an unguessable token (UUID v4, 122 random bits)
	SessionToken() string
}

// RandomGenerator implements Generator using crypto/rand backed sources
type RandomGenerator struct{}

// New creates a new RandomGenerator
func New() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) UserID() model.UserID {
	return model.UserID(uuid.NewString())
}

func (g *RandomGenerator) ScoreID() model.ScoreID {
	return model.ScoreID(ulid.Make().String())
}

func (g *RandomGenerator) SessionToken() string {
	return uuid.NewString()
}
