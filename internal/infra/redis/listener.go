package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Listener consumes broker topics over Redis pub/sub and dispatches
// deduplicated envelopes to registered handlers. It also implements the
// bounded result wait: Expect arms a timer per correlation id, and an
// envelope arriving for that id disarms it.
type Listener struct {
	client *Client
	log    zerolog.Logger

	seen *dedupeCache

	mu       sync.Mutex
	handlers map[string]adapter.Handler
	pending  map[string]*time.Timer

	onTimeout func(correlationID string)
}

var (
	_ adapter.CompletionListener = (*Listener)(nil)
	_ adapter.ResultWatcher      = (*Listener)(nil)
)

// NewListener builds a listener with a bounded dedupe window. onTimeout is
// invoked at most once per expected correlation id, and only if no envelope
// for that id arrived within its deadline.
func NewListener(client *Client, dedupeSize int, onTimeout func(string), log zerolog.Logger) *Listener {
	return &Listener{
		client:    client,
		log:       log.With().Str("component", "broker_listener").Logger(),
		seen:      newDedupeCache(dedupeSize),
		handlers:  make(map[string]adapter.Handler),
		pending:   make(map[string]*time.Timer),
		onTimeout: onTimeout,
	}
}

// Subscribe registers the handler for a topic. Must be called before Start.
func (l *Listener) Subscribe(topic string, h adapter.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[topic] = h
}

// Expect arms a timeout for a correlation id. If no envelope with that id is
// observed before the deadline, the timeout callback fires.
func (l *Listener) Expect(correlationID string, timeout time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.pending[correlationID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(timeout, func() {
		l.mu.Lock()
		still := l.pending[correlationID] == t
		if still {
			delete(l.pending, correlationID)
		}
		l.mu.Unlock()
		if !still {
			return
		}
		metrics.ResultTimedOut()
		l.log.Warn().Str("correlation_id", correlationID).Dur("timeout", timeout).
			Msg("no completion signal within deadline")
		if l.onTimeout != nil {
			l.onTimeout(correlationID)
		}
	})
	l.pending[correlationID] = t
}

// Start blocks consuming all subscribed topics until the context is
// cancelled. Handler panics are contained so one bad message cannot take the
// consumer loop down.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	topics := make([]string, 0, len(l.handlers))
	for t := range l.handlers {
		topics = append(topics, t)
	}
	l.mu.Unlock()
	if len(topics) == 0 {
		return nil
	}

	sub := l.client.Subscribe(ctx, topics...)
	defer sub.Close()

	ch := sub.Channel()
	l.log.Info().Strs("topics", topics).Msg("listener started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.handleMessage(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

func (l *Listener) handleMessage(ctx context.Context, topic string, raw []byte) {
	var env adapter.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		l.log.Error().Err(err).Str("topic", topic).Msg("undecodable envelope dropped")
		return
	}
	if env.Topic == "" {
		env.Topic = topic
	}

	if !l.seen.Add(env.CorrelationID) {
		metrics.DuplicateDropped(topic)
		l.log.Debug().Str("topic", topic).Str("correlation_id", env.CorrelationID).
			Msg("duplicate envelope dropped")
		return
	}

	l.mu.Lock()
	if t, ok := l.pending[env.CorrelationID]; ok {
		t.Stop()
		delete(l.pending, env.CorrelationID)
	}
	h := l.handlers[topic]
	l.mu.Unlock()

	if h == nil {
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				l.log.Error().Str("topic", topic).Str("correlation_id", env.CorrelationID).
					Interface("panic", r).Msg("handler panicked")
			}
		}()
		h(ctx, env)
	}()
}
