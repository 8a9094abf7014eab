package replication

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// NewArchiveHandler copies every created record into archive.
// Redelivered events are harmless: a record already archived is skipped.
// A different record under the same code is logged and skipped, since
// retrying could never resolve it.
func NewArchiveHandler(archive shortener.Repository, logger *zap.Logger) messaging.Handler[ShortURLCreated] {
	return func(ctx context.Context, event *ShortURLCreated) error {
		if event.Code == "" {
			logger.Warn("skipping event without code")

			return nil
		}

		shortURL := event.ShortURL()

		inserted, err := archive.InsertIfAbsent(ctx, shortURL)
		if err != nil {
			return fmt.Errorf("archive %s: %w", event.Code, err)
		}

		if inserted {
			logger.Debug("archived short url", zap.String("code", event.Code))

			return nil
		}

		existing, err := archive.Lookup(ctx, shortURL.Code)
		if err != nil {
			return fmt.Errorf("lookup archived %s: %w", event.Code, err)
		}

		if existing.OriginalURL != shortURL.OriginalURL {
			logger.Warn("archive holds a different url for code",
				zap.String("code", event.Code),
				zap.String("archived_url", existing.OriginalURL),
				zap.String("event_url", shortURL.OriginalURL),
			)
		}

		return nil
	}
}

// NewConsumer subscribes the archive handler to the created stream.
func NewConsumer(
	subscriber message.Subscriber,
	archive shortener.Repository,
	logger *zap.Logger,
) *messaging.Consumer[ShortURLCreated] {
	return messaging.NewConsumer(
		subscriber,
		TopicShortURLCreated,
		EventTypeShortURLCreated,
		NewArchiveHandler(archive, logger),
		logger,
	)
}
