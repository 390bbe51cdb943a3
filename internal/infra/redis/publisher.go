package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ adapter.ResultPublisher = (*Publisher)(nil)

const maxPublishBackoff = 5 * time.Second

// Publisher delivers result envelopes over Redis pub/sub. Delivery is
// at-least-once: the envelope always carries the correlation id so consumers
// can deduplicate. Broker unreachability is retried with bounded exponential
// backoff; exhaustion surfaces as domain.ErrDeliveryFailed so callers can
// record a delivery failure distinct from a work failure.
type Publisher struct {
	client   RedisClient
	attempts int
	backoff  time.Duration
	log      *zerolog.Logger
}

func NewPublisher(client RedisClient, attempts int, backoff time.Duration, logger *zerolog.Logger) *Publisher {
	l := logger.With().Str("component", "Publisher").Logger()
	if attempts <= 0 {
		attempts = 5
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Publisher{client: client, attempts: attempts, backoff: backoff, log: &l}
}

func (p *Publisher) Publish(ctx context.Context, topic, correlationID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	env := adapter.Envelope{
		CorrelationID: correlationID,
		Topic:         topic,
		Payload:       body,
		PublishedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope for %s: %w", topic, err)
	}

	delay := p.backoff
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		lastErr = p.client.Publish(ctx, topic, data)
		if lastErr == nil {
			p.log.Debug().Str("topic", topic).Str("correlation_id", correlationID).Int("attempt", attempt).Msg("published")
			return nil
		}
		if attempt == p.attempts {
			break
		}
		metrics.PublishRetried(topic)
		p.log.Warn().Err(lastErr).Str("topic", topic).Int("attempt", attempt).Dur("backoff", delay).Msg("publish failed, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w: %v", topic, domain.ErrDeliveryFailed, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxPublishBackoff {
			delay = maxPublishBackoff
		}
	}
	metrics.PublishFailed(topic)
	return fmt.Errorf("publish %s after %d attempts: %w: %v", topic, p.attempts, domain.ErrDeliveryFailed, lastErr)
}
