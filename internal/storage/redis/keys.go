package redis

import (
	"fmt"

	"github.com/mcoot/snapguess/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "snapguess"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playerOrderKey returns the Redis key for the registration-order list of
// player ids
func playerOrderKey() string {
	return fmt.Sprintf("%s:idx:player_order", keyPrefix)
}

// snapHistoryKey returns the Redis key for the snap history list
func snapHistoryKey() string {
	return fmt.Sprintf("%s:snaps", keyPrefix)
}

// nounWordsKey returns the Redis key for the noun lexicon word list
func nounWordsKey() string {
	return fmt.Sprintf("%s:lexicon:nouns", keyPrefix)
}
