package repository

import (
	"context"
	"time"
)

// AccountLocker guards the browser session: it is exclusively owned by one
// in-flight task per authenticated account. TryLock returns
// domain.ErrAccountBusy when the account is already held.
type AccountLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
