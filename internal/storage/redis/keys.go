package redis

import (
	"fmt"

	"github.com/mcoot/snakegame-go/internal/model"
)

// Key prefix for all snake game data
const keyPrefix = "snake"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usersSetKey returns the Redis key for the SET of all user ids
func usersSetKey() string {
	return fmt.Sprintf("%s:users", keyPrefix)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// scoreKey returns the Redis key for a ScoreRecord
func scoreKey(id model.ScoreID) string {
	return fmt.Sprintf("%s:score:%s", keyPrefix, id)
}

// scoreSeqKey returns the Redis key for the score insertion counter
func scoreSeqKey() string {
	return fmt.Sprintf("%s:seq:score", keyPrefix)
}

// scoresIndexKey returns the Redis key for the LIST of score ids, in
// insertion order. A nil mode selects the list of every score.
func scoresIndexKey(mode *model.GameMode) string {
	if mode == nil {
		return fmt.Sprintf("%s:idx:scores", keyPrefix)
	}
	return fmt.Sprintf("%s:idx:scores_for_mode:%s", keyPrefix, *mode)
}

// savedGameKey returns the Redis key for a user's saved game
func savedGameKey(userID model.UserID) string {
	return fmt.Sprintf("%s:saved_game:%s", keyPrefix, userID)
}
