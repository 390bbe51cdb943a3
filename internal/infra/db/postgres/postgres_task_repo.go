package postgres

import (
	"context"
	"errors"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/repository"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.TaskRepository = (*taskRepo)(nil)

type taskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *taskRepo {
	return &taskRepo{pool: pool}
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	const q = `
INSERT INTO tasks (id, kind, state, created_at, completed_at, error_kind, error, result_ref)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.pool.Exec(ctx, q,
		task.ID, task.Kind, task.State, task.CreatedAt, task.CompletedAt,
		task.ErrorKind, task.Error, task.ResultRef)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrInvalidArgument
	}
	return err
}

func (r *taskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	const q = `
SELECT id, kind, state, created_at, completed_at, error_kind, error, result_ref
FROM tasks WHERE id = $1;`
	var t model.Task
	var kind, state string
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&t.ID, &kind, &state, &t.CreatedAt, &t.CompletedAt,
		&t.ErrorKind, &t.Error, &t.ResultRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.Kind = model.TaskKind(kind)
	t.State = model.TaskState(state)
	return &t, nil
}

// MarkRunning is compare-and-set on state = pending. A lost race surfaces as
// ErrInvalidTransition so the loser never re-runs the work.
func (r *taskRepo) MarkRunning(ctx context.Context, id string) error {
	const q = `UPDATE tasks SET state = $1 WHERE id = $2 AND state = $3;`
	tag, err := r.pool.Exec(ctx, q, model.TaskStateRunning, id, model.TaskStatePending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionErr(ctx, id)
	}
	return nil
}

func (r *taskRepo) MarkCompleted(ctx context.Context, id string, resultRef string) error {
	const q = `
UPDATE tasks SET state = $1, completed_at = $2, result_ref = $3
WHERE id = $4 AND state = $5;`
	tag, err := r.pool.Exec(ctx, q,
		model.TaskStateCompleted, time.Now().UTC(), resultRef, id, model.TaskStateRunning)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionErr(ctx, id)
	}
	return nil
}

func (r *taskRepo) MarkFailed(ctx context.Context, id string, kind, reason string) error {
	const q = `
UPDATE tasks SET state = $1, completed_at = $2, error_kind = $3, error = $4
WHERE id = $5 AND state IN ($6, $7);`
	tag, err := r.pool.Exec(ctx, q,
		model.TaskStateFailed, time.Now().UTC(), kind, reason,
		id, model.TaskStatePending, model.TaskStateRunning)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionErr(ctx, id)
	}
	return nil
}

// transitionErr distinguishes "task does not exist" from "task already in a
// state the transition does not accept".
func (r *taskRepo) transitionErr(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}
