package redis

import (
	"fmt"

	"github.com/mcoot/teamboard/internal/model"
)

// Key prefix for all scoreboard data
const keyPrefix = "teamboard"

// teamKey returns the Redis key for a Team
func teamKey(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", keyPrefix, id)
}

// teamsIndexKey returns the Redis key for the SET of all team ids
func teamsIndexKey() string {
	return keyPrefix + ":idx:teams"
}

// teamNameIndexKey returns the Redis key for the name -> team id index
func teamNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:team_name:%s", keyPrefix, name)
}

// challengeKey returns the Redis key for a Challenge
func challengeKey(id model.ChallengeID) string {
	return fmt.Sprintf("%s:challenge:%s", keyPrefix, id)
}

// challengesIndexKey returns the Redis key for the SET of all challenge ids
func challengesIndexKey() string {
	return keyPrefix + ":idx:challenges"
}

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usersIndexKey returns the Redis key for the SET of all user ids
func usersIndexKey() string {
	return keyPrefix + ":idx:users"
}

// userEmailIndexKey returns the Redis key for the email -> user id index
func userEmailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:user_email:%s", keyPrefix, email)
}
