package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenerator_Formats(t *testing.T) {
	g := New()

	parsed, err := uuid.Parse(string(g.UserID()))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	_, err = ulid.Parse(string(g.ScoreID()))
	require.NoError(t, err)

	token, err := uuid.Parse(g.SessionToken())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), token.Version())
}

func TestRandomGenerator_Unique(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := g.SessionToken()
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
