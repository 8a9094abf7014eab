package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Worker is a consumer the group can start and stop.
type Worker interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs the workers that share one subscriber and owns that
// subscriber's lifetime.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger

	mu      sync.Mutex
	workers []Worker
	running int
}

// NewConsumerGroup creates an empty group reading from subscriber.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a worker. Workers added after Start are not started.
func (g *ConsumerGroup) Add(worker Worker) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.workers = append(g.workers, worker)
}

// Start starts the workers in order. When one fails the ones already
// running are stopped again and the error names the failing topic.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, worker := range g.workers {
		if err := worker.Start(ctx); err != nil {
			_ = g.stopRunning()

			return fmt.Errorf("start consumer for %s: %w", worker.Topic(), err)
		}

		g.running++

		g.logger.Info("consumer started", zap.String("topic", worker.Topic()))
	}

	return nil
}

// Shutdown stops the running workers in reverse start order, then closes
// the subscriber. Every error is reported.
func (g *ConsumerGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logger.Info("stopping consumers", zap.Int("running", g.running))

	err := g.stopRunning()

	if closeErr := g.subscriber.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close subscriber: %w", closeErr))
	}

	return err
}

func (g *ConsumerGroup) stopRunning() error {
	var errs []error

	for ; g.running > 0; g.running-- {
		worker := g.workers[g.running-1]
		if err := worker.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("stop consumer for %s: %w", worker.Topic(), err))
		}
	}

	return errors.Join(errs...)
}
