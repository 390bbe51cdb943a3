package repository

import (
	"context"

	"serial-job-applier/internal/domain/model"
)

// TaskRepository owns Task records. All transitions are compare-and-set on
// the current state so two workers can never both finalize the same task:
// a transition against a terminal task returns domain.ErrInvalidTransition.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	// MarkRunning transitions pending -> running.
	MarkRunning(ctx context.Context, id string) error
	// MarkCompleted transitions running -> completed and stamps completed_at.
	MarkCompleted(ctx context.Context, id string, resultRef string) error
	// MarkFailed transitions pending|running -> failed with a failure kind
	// and a human-readable reason.
	MarkFailed(ctx context.Context, id string, kind, reason string) error
}
