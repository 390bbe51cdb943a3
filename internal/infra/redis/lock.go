// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ repository.AccountLocker = (*AccountLocker)(nil)

// AccountLocker serializes browser automation per authenticated account: at
// most one in-flight task may drive one account's browser session.
type AccountLocker struct {
	cli *redis.Client
}

func NewAccountLocker(c *Client) *AccountLocker {
	return &AccountLocker{cli: c.cli}
}

func lockKey(account string) string { return "browser_session:" + account }

func (l *AccountLocker) TryLock(ctx context.Context, account string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, lockKey(account), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrAccountBusy
	}
	return token, nil
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *AccountLocker) Unlock(ctx context.Context, account, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{lockKey(account)}, token).Result()
	return err
}
