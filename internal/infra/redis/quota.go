package redis

import (
	"context"
	"fmt"
	"time"

	"serial-job-applier/internal/domain/ports/repository"
)

var _ repository.SendQuota = (*SendQuota)(nil)

// SendQuota is the single authoritative daily-send counter, shared by every
// task touching the same account. Reservation is one INCR compared against
// the limit; the key's window is set on first increment.
type SendQuota struct {
	client RedisClient
	window string // "calendar" | "rolling"
	now    func() time.Time
}

func NewSendQuota(client RedisClient, window string) *SendQuota {
	return &SendQuota{client: client, window: window, now: time.Now}
}

func (q *SendQuota) key(account string) (string, time.Duration) {
	if q.window == "rolling" {
		return fmt.Sprintf("outreach_quota:%s", account), 24 * time.Hour
	}
	// Calendar mode: one key per UTC day, retained long enough for audit.
	day := q.now().UTC().Format("2006-01-02")
	return fmt.Sprintf("outreach_quota:%s:%s", account, day), 48 * time.Hour
}

func (q *SendQuota) Reserve(ctx context.Context, account string, limit int) (bool, error) {
	key, expiry := q.key(account)
	count, err := q.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := q.client.Expire(ctx, key, expiry); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
