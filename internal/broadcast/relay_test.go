package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/testutil"
)

type RelaySuite struct {
	suite.Suite
	mini *miniredis.Miniredis
	ctx  context.Context
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.ctx = context.Background()
}

// startRelay returns a coordinator wired to a started relay on the shared miniredis
func (s *RelaySuite) startRelay() (*Coordinator, *Relay) {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	coord := NewCoordinator(testutil.NopLogger())
	relay := NewRelay(client, coord, testutil.NopLogger())
	s.Require().NoError(relay.Start(s.ctx))
	s.T().Cleanup(func() { _ = relay.Close() })
	return coord, relay
}

func (s *RelaySuite) awaitSignal(sub *Subscription) model.Topic {
	select {
	case topic := <-sub.Signals():
		return topic
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for signal")
		return ""
	}
}

func (s *RelaySuite) TestPublishReachesLocalSubscribers() {
	coord, relay := s.startRelay()
	sub, err := coord.Subscribe("a")
	s.Require().NoError(err)

	relay.Publish(model.TopicTeams)

	s.Equal(model.TopicTeams, s.awaitSignal(sub))
}

func (s *RelaySuite) TestPublishReachesOtherProcesses() {
	coordA, relayA := s.startRelay()
	coordB, _ := s.startRelay()

	subA, err := coordA.Subscribe("a")
	s.Require().NoError(err)
	subB, err := coordB.Subscribe("b")
	s.Require().NoError(err)

	relayA.Publish(model.TopicChallenges)

	s.Equal(model.TopicChallenges, s.awaitSignal(subA))
	s.Equal(model.TopicChallenges, s.awaitSignal(subB))
}

func (s *RelaySuite) TestUnknownTopicIgnored() {
	coord, relay := s.startRelay()
	sub, err := coord.Subscribe("a")
	s.Require().NoError(err)

	s.mini.Publish(DefaultRelayChannel, "bogus")
	relay.Publish(model.TopicLeaderboard)

	s.Equal(model.TopicLeaderboard, s.awaitSignal(sub))
}

func (s *RelaySuite) TestPublishFallsBackToLocalWhenRedisDown() {
	coord, relay := s.startRelay()
	sub, err := coord.Subscribe("a")
	s.Require().NoError(err)

	s.mini.Close()
	relay.Publish(model.TopicTeams)

	s.Equal(model.TopicTeams, s.awaitSignal(sub))
}
