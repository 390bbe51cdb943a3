package usecase

import (
	"context"
	"errors"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/domain/ports/repository"
	"serial-job-applier/internal/infra/logging"
	"serial-job-applier/internal/infra/metrics"
	"serial-job-applier/internal/infra/worker"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ TaskUseCase = (*taskUC)(nil)

// WorkFunc is a workflow body. It runs on a pool worker and returns a result
// reference (session id or similar) recorded on the completed task.
type WorkFunc func(ctx context.Context, taskID string) (resultRef string, err error)

type TaskUseCase interface {
	// Submit registers a pending task and hands the work to the pool. It
	// returns as soon as the task is durable; the work runs asynchronously.
	Submit(ctx context.Context, kind model.TaskKind, run WorkFunc) (*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	// FailTimeout marks a task failed because no completion signal arrived
	// within the bounded wait. Already-terminal tasks are left untouched.
	FailTimeout(id string)
}

type taskUC struct {
	tasks         repository.TaskRepository
	pool          *worker.Pool
	watcher       adapter.ResultWatcher
	resultTimeout time.Duration
	log           *zerolog.Logger
}

func NewTaskUseCase(tasks repository.TaskRepository, pool *worker.Pool, watcher adapter.ResultWatcher, resultTimeout time.Duration, log *zerolog.Logger) *taskUC {
	l := log.With().Str("component", "TaskUseCase").Logger()
	return &taskUC{
		tasks:         tasks,
		pool:          pool,
		watcher:       watcher,
		resultTimeout: resultTimeout,
		log:           &l,
	}
}

func (u *taskUC) Submit(ctx context.Context, kind model.TaskKind, run WorkFunc) (*model.Task, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	task := &model.Task{
		ID:        ulid.Make().String(),
		Kind:      kind,
		State:     model.TaskStatePending,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	if err := u.pool.Submit(func(workCtx context.Context) error {
		u.execute(workCtx, task.ID, kind, run)
		return nil
	}); err != nil {
		// The task record exists but no worker will ever pick it up.
		reason := "worker queue saturated"
		if ferr := u.tasks.MarkFailed(ctx, task.ID, model.FailWork, reason); ferr != nil {
			u.log.Error().Err(ferr).Str("task_id", task.ID).Msg("failed to mark unscheduled task")
		}
		return nil, err
	}

	if u.watcher != nil && u.resultTimeout > 0 {
		u.watcher.Expect(task.ID, u.resultTimeout)
	}
	u.log.Info().Str("task_id", task.ID).Str("kind", string(kind)).Msg("task accepted")
	return task, nil
}

func (u *taskUC) execute(ctx context.Context, taskID string, kind model.TaskKind, run WorkFunc) {
	ctx = logging.WithTaskID(ctx, taskID)
	log := logging.With(ctx, u.log)

	if err := u.tasks.MarkRunning(ctx, taskID); err != nil {
		// Lost the claim (timed out or cancelled before a worker got here).
		log.Warn().Err(err).Msg("task not claimable, skipping")
		return
	}

	start := time.Now()
	resultRef, err := run(ctx, taskID)
	elapsed := time.Since(start)

	if err != nil {
		failKind := classifyFailure(err)
		if merr := u.tasks.MarkFailed(context.Background(), taskID, failKind, err.Error()); merr != nil {
			if !errors.Is(merr, domain.ErrInvalidTransition) {
				log.Error().Err(merr).Msg("failed to record task failure")
			}
		}
		metrics.TaskFinished(string(kind), string(model.TaskStateFailed), elapsed.Seconds())
		log.Error().Err(err).Str("failure_kind", failKind).Dur("duration", elapsed).Msg("task failed")
		return
	}

	if merr := u.tasks.MarkCompleted(context.Background(), taskID, resultRef); merr != nil {
		if !errors.Is(merr, domain.ErrInvalidTransition) {
			log.Error().Err(merr).Msg("failed to record task completion")
		}
		return
	}
	metrics.TaskFinished(string(kind), string(model.TaskStateCompleted), elapsed.Seconds())
	log.Info().Dur("duration", elapsed).Msg("task completed")
}

func (u *taskUC) Get(ctx context.Context, id string) (*model.Task, error) {
	return u.tasks.FindByID(ctx, id)
}

func (u *taskUC) FailTimeout(id string) {
	err := u.tasks.MarkFailed(context.Background(), id, model.FailTimeout, "no completion signal within the result timeout")
	if err != nil && !errors.Is(err, domain.ErrInvalidTransition) && !errors.Is(err, domain.ErrNotFound) {
		u.log.Error().Err(err).Str("task_id", id).Msg("failed to time out task")
	}
}

// classifyFailure buckets a workflow error into the stored failure kind.
func classifyFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrDeliveryFailed):
		return model.FailDelivery
	case errors.Is(err, domain.ErrUnfillableField):
		return model.FailUnfillable
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrExpired):
		return model.FailValidation
	case errors.Is(err, context.DeadlineExceeded):
		return model.FailTimeout
	default:
		return model.FailWork
	}
}
