// Package replication streams created short URLs to a secondary store.
package replication

import (
	"time"

	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
)

const (
	// TopicShortURLCreated is the stream every created record is published on.
	TopicShortURLCreated = "shorturl.created"
	// EventTypeShortURLCreated versions the ShortURLCreated payload.
	EventTypeShortURLCreated = "shorturl.created.v1"
)

// ShortURLCreated carries a newly created record.
type ShortURLCreated struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewShortURLCreated builds the event for shortURL.
func NewShortURLCreated(shortURL *shortener.ShortURL) *ShortURLCreated {
	return &ShortURLCreated{
		Code:        string(shortURL.Code),
		OriginalURL: shortURL.OriginalURL,
		CreatedAt:   shortURL.CreatedAt,
	}
}

// ShortURL returns the record carried by the event.
func (e *ShortURLCreated) ShortURL() *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:        shortener.Code(e.Code),
		OriginalURL: e.OriginalURL,
		CreatedAt:   e.CreatedAt,
	}
}

// NewPublisher returns the publish function for created records.
// It drops events when the group has no publisher.
func NewPublisher(group *messaging.PublisherGroup) messaging.Publish[ShortURLCreated] {
	if !group.Enabled() {
		return messaging.NopPublish[ShortURLCreated]()
	}

	return messaging.NewPublishFunc[ShortURLCreated](group.Publisher(), TopicShortURLCreated, EventTypeShortURLCreated)
}
