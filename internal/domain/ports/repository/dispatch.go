package repository

import (
	"context"

	"serial-job-applier/internal/domain/model"
)

// DispatchLogRepository records one audit entry per candidate per send
// attempt. Entries are append-only.
type DispatchLogRepository interface {
	Append(ctx context.Context, rec *model.MessageDispatchRecord) error
	ListByTask(ctx context.Context, taskID string) ([]model.MessageDispatchRecord, error)
}
