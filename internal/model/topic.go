package model

// Topic names a class of data whose change is signalled to subscribers
type Topic string

const (
	TopicTeams       Topic = "teams"
	TopicChallenges  Topic = "challenges"
	TopicLeaderboard Topic = "leaderboard"
)

// Topics lists every topic in a fixed order
var Topics = []Topic{TopicTeams, TopicChallenges, TopicLeaderboard}

// EventName returns the wire event name signalled for the topic
func (t Topic) EventName() string {
	return string(t) + ":updated"
}

// Valid reports whether the topic is one of the known topics
func (t Topic) Valid() bool {
	switch t {
	case TopicTeams, TopicChallenges, TopicLeaderboard:
		return true
	}
	return false
}

// TeamTopics are signalled after any team mutation
var TeamTopics = []Topic{TopicTeams, TopicLeaderboard}

// ChallengeTopics are signalled after any challenge mutation
var ChallengeTopics = []Topic{TopicChallenges}
