package adapter

import (
	"context"
	"encoding/json"
	"time"
)

// Broker topics. Every message carries a correlation id equal to the
// originating task id or session id.
const (
	TopicJobResults            = "job-results"
	TopicOutreachSearchResults = "outreach-search-results"
	TopicOutreachResults       = "outreach-results"
	TopicSearchComplete        = "search-complete-signal"
)

// Envelope is the broker wire format. Delivery is at-least-once, so the
// correlation id is always present for consumer-side deduplication.
type Envelope struct {
	CorrelationID string          `json:"correlation_id"`
	Topic         string          `json:"topic"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// ResultPublisher delivers workflow results through the broker. On broker
// unreachability it retries with bounded exponential backoff and then returns
// an error wrapping domain.ErrDeliveryFailed.
type ResultPublisher interface {
	Publish(ctx context.Context, topic, correlationID string, payload any) error
}

// Handler consumes one deduplicated envelope. Ordering is guaranteed only per
// correlation key, never globally.
type Handler func(ctx context.Context, env Envelope)

// CompletionListener subscribes to topics and dispatches deduplicated
// envelopes to registered handlers.
type CompletionListener interface {
	Subscribe(topic string, h Handler)
	Start(ctx context.Context) error
}

// ResultWatcher enforces the bounded wait on completion signals: a watched
// correlation id that sees no envelope within the timeout triggers the
// configured timeout callback (which marks the task failed).
type ResultWatcher interface {
	Expect(correlationID string, timeout time.Duration)
}
