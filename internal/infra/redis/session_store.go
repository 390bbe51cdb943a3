package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps outreach sessions in Redis as write-once JSON blobs.
// The expires_at check at read time is authoritative; the Redis key itself is
// retained past the TTL so an expired read deterministically reports Expired
// rather than NotFound within the retention window.
type SessionStore struct {
	client RedisClient
	now    func() time.Time
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func sessionKey(id string) string { return "outreach_session:" + id }

// retention keeps the record around long enough to distinguish Expired from
// NotFound after the TTL has elapsed.
func retention(ttl time.Duration) time.Duration {
	return 2*ttl + time.Hour
}

func (s *SessionStore) Create(ctx context.Context, payload model.OutreachSessionPayload, ttl time.Duration) (*model.OutreachSession, error) {
	if ttl < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := s.now().UTC()
	sess := &model.OutreachSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Payload:   payload,
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, retention(ttl)); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Read(ctx context.Context, id string) (*model.OutreachSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var sess model.OutreachSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	if sess.Expired(s.now().UTC()) {
		return nil, domain.ErrExpired
	}
	return &sess, nil
}
