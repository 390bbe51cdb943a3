package repository

import (
	"context"
	"time"

	"serial-job-applier/internal/domain/model"
)

// SessionStore owns outreach sessions and enforces their expiry. Sessions are
// write-once, read-many: there is no update operation. Read returns
// domain.ErrExpired once now > expires_at and domain.ErrNotFound for unknown
// ids; an expired session must never surface stale payload.
type SessionStore interface {
	Create(ctx context.Context, payload model.OutreachSessionPayload, ttl time.Duration) (*model.OutreachSession, error)
	Read(ctx context.Context, id string) (*model.OutreachSession, error)
}
