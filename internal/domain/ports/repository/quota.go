package repository

import "context"

// SendQuota is the single authoritative daily-send counter shared across
// tasks. Reserve atomically takes one slot for the account and reports
// whether the send may proceed under the given limit. Whether the window is
// a calendar day or a rolling 24h period is an implementation configuration.
type SendQuota interface {
	Reserve(ctx context.Context, account string, limit int) (bool, error)
}
