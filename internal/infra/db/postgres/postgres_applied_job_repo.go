package postgres

import (
	"context"
	"time"

	"serial-job-applier/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.AppliedJobRepository = (*appliedJobRepo)(nil)

type appliedJobRepo struct {
	pool *pgxpool.Pool
}

func NewAppliedJobRepo(pool *pgxpool.Pool) *appliedJobRepo {
	return &appliedJobRepo{pool: pool}
}

func (r *appliedJobRepo) WasApplied(ctx context.Context, jobID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM job_applications WHERE job_id = $1);`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, jobID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Record upserts so a retried application overwrites the earlier outcome for
// the same posting instead of failing on the primary key.
func (r *appliedJobRepo) Record(ctx context.Context, jobID string, success bool, applyErr string) error {
	const q = `
INSERT INTO job_applications (job_id, applied_at, success, error)
VALUES ($1, $2, $3, $4)
ON CONFLICT (job_id) DO UPDATE SET
  applied_at = EXCLUDED.applied_at,
  success = EXCLUDED.success,
  error = EXCLUDED.error;`
	_, err := r.pool.Exec(ctx, q, jobID, time.Now().UTC(), success, applyErr)
	return err
}
