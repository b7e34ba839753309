package broadcast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/testutil"
)

type CoordinatorSuite struct {
	suite.Suite
	coord *Coordinator
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.coord = NewCoordinator(testutil.NopLogger(), WithBufferSize(4))
}

// drain returns every signal currently buffered on sub
func drain(sub *Subscription) []model.Topic {
	var topics []model.Topic
	for {
		select {
		case t, ok := <-sub.Signals():
			if !ok {
				return topics
			}
			topics = append(topics, t)
		default:
			return topics
		}
	}
}

func (s *CoordinatorSuite) TestPublishReachesEverySubscriber() {
	a, err := s.coord.Subscribe("a")
	s.Require().NoError(err)
	b, err := s.coord.Subscribe("b")
	s.Require().NoError(err)

	s.coord.Publish(model.TopicTeams)
	s.coord.Publish(model.TopicLeaderboard)

	expected := []model.Topic{model.TopicTeams, model.TopicLeaderboard}
	s.Equal(expected, drain(a))
	s.Equal(expected, drain(b))
}

func (s *CoordinatorSuite) TestPublishWithNoSubscribers() {
	s.NotPanics(func() { s.coord.Publish(model.TopicTeams) })
	s.Equal(Delivery{}, s.coord.deliver(model.TopicTeams))
}

func (s *CoordinatorSuite) TestSubscribeDuplicateID() {
	_, err := s.coord.Subscribe("a")
	s.Require().NoError(err)

	_, err = s.coord.Subscribe("a")
	s.ErrorIs(err, ErrAlreadySubscribed)
	s.Equal(1, s.coord.SubscriberCount())
}

func (s *CoordinatorSuite) TestUnsubscribeIsIdempotent() {
	sub, err := s.coord.Subscribe("a")
	s.Require().NoError(err)

	s.coord.Unsubscribe("a")
	s.coord.Unsubscribe("a")
	s.coord.Unsubscribe("never-registered")

	s.Equal(0, s.coord.SubscriberCount())
	_, ok := <-sub.Signals()
	s.False(ok, "signals channel should be closed")
}

func (s *CoordinatorSuite) TestUnsubscribedConnectionGetsNothing() {
	a, err := s.coord.Subscribe("a")
	s.Require().NoError(err)
	b, err := s.coord.Subscribe("b")
	s.Require().NoError(err)

	s.coord.Unsubscribe("a")
	s.coord.Publish(model.TopicChallenges)

	s.Empty(drain(a))
	s.Equal([]model.Topic{model.TopicChallenges}, drain(b))
}

func (s *CoordinatorSuite) TestFullBufferDropsWithoutBlocking() {
	slow, err := s.coord.Subscribe("slow")
	s.Require().NoError(err)
	fast, err := s.coord.Subscribe("fast")
	s.Require().NoError(err)

	for range 4 {
		s.coord.Publish(model.TopicTeams)
	}
	s.Len(drain(fast), 4)

	d := s.coord.deliver(model.TopicLeaderboard)
	s.Equal(Delivery{Sent: 1, Dropped: 1}, d)

	s.Len(drain(slow), 4)
	s.Equal([]model.Topic{model.TopicLeaderboard}, drain(fast))
}

func (s *CoordinatorSuite) TestCloseDisconnectsAll() {
	a, err := s.coord.Subscribe("a")
	s.Require().NoError(err)

	s.coord.Close()
	s.coord.Close()

	_, ok := <-a.Signals()
	s.False(ok)
	s.Equal(0, s.coord.SubscriberCount())

	_, err = s.coord.Subscribe("b")
	s.ErrorIs(err, ErrClosed)
}

func (s *CoordinatorSuite) TestConcurrentSubscribePublishUnsubscribe() {
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		id := ConnID(fmt.Sprintf("conn-%d", i))
		go func() {
			defer wg.Done()
			sub, err := s.coord.Subscribe(id)
			if err != nil {
				return
			}
			drain(sub)
			s.coord.Unsubscribe(id)
		}()
		go func() {
			defer wg.Done()
			s.coord.Publish(model.TopicTeams)
		}()
	}
	wg.Wait()

	s.Equal(0, s.coord.SubscriberCount())
}
