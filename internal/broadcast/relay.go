package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/teamboard/internal/model"
)

// DefaultRelayChannel is the Redis pub/sub channel topics travel on
const DefaultRelayChannel = "teamboard:topics"

const relayPublishTimeout = 2 * time.Second

// Relay forwards published topics through Redis pub/sub so that every process sharing the Redis
// instance signals its own local subscribers. A process receives its own publishes back from Redis.
type Relay struct {
	client  *redis.Client
	channel string
	local   *Coordinator
	logger  *slog.Logger

	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewRelay creates a Relay delivering into local
func NewRelay(client *redis.Client, local *Coordinator, logger *slog.Logger) *Relay {
	return &Relay{
		client:  client,
		channel: DefaultRelayChannel,
		local:   local,
		logger:  logger.With(slog.String("component", "relay")),
	}
}

// Start subscribes to the relay channel and begins forwarding
func (r *Relay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	// Wait for the subscription to be confirmed so no publish is missed after Start returns
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	r.pubsub = pubsub

	r.wg.Add(1)
	go r.run(pubsub.Channel())

	r.logger.Info("relay started", slog.String("channel", r.channel))
	return nil
}

func (r *Relay) run(messages <-chan *redis.Message) {
	defer r.wg.Done()
	for msg := range messages {
		topic := model.Topic(msg.Payload)
		if !topic.Valid() {
			r.logger.Warn("relay ignored unknown topic", slog.String("payload", msg.Payload))
			continue
		}
		r.local.Publish(topic)
	}
}

// Publish sends topic through Redis. If Redis is unreachable the topic is delivered locally only.
func (r *Relay) Publish(topic model.Topic) {
	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()

	if err := r.client.Publish(ctx, r.channel, string(topic)).Err(); err != nil {
		r.logger.Error("relay publish failed, delivering locally",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()))
		r.local.Publish(topic)
	}
}

// Close stops forwarding
func (r *Relay) Close() error {
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	r.wg.Wait()
	return err
}
