package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/replication"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// ReplicatorConsumerGroup is the Redis stream consumer group of the replicator.
const ReplicatorConsumerGroup = "replicator"

// PublisherGroupPackage provides the *messaging.PublisherGroup. Without
// Replicate the group is disabled and publishing is a no-op.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.Replicate {
			return messaging.NewPublisherGroup(nil), nil
		}

		redisConn, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client:     redisConn.Client,
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			},
			messaging.NewZapLoggerAdapter(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("redis stream publisher: %w", err)
		}

		logger.Info("replication enabled", zap.String("topic", replication.TopicShortURLCreated))

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides the replicator's *messaging.ConsumerGroup,
// which archives created records into the configured repository.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		redisConn, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		archive, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        redisConn.Client,
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: ReplicatorConsumerGroup,
			},
			messaging.NewZapLoggerAdapter(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(replication.NewConsumer(subscriber, archive, logger))

		return group, nil
	})
}
