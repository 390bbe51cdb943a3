package postgres

import (
	"context"

	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.DispatchLogRepository = (*dispatchRepo)(nil)

type dispatchRepo struct {
	pool *pgxpool.Pool
}

func NewDispatchRepo(pool *pgxpool.Pool) *dispatchRepo {
	return &dispatchRepo{pool: pool}
}

func (r *dispatchRepo) Append(ctx context.Context, rec *model.MessageDispatchRecord) error {
	const q = `
INSERT INTO message_dispatches
  (id, task_id, candidate_id, candidate_name, profile_ref, company_name, role, status, method, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := r.pool.Exec(ctx, q,
		uuid.New(), rec.TaskID, rec.CandidateID, rec.CandidateName, rec.ProfileRef,
		rec.CompanyName, rec.Role, rec.Status, rec.Method, rec.Reason, rec.Timestamp)
	return err
}

func (r *dispatchRepo) ListByTask(ctx context.Context, taskID string) ([]model.MessageDispatchRecord, error) {
	const q = `
SELECT task_id, candidate_id, candidate_name, profile_ref, company_name, role, status, method, reason, created_at
FROM message_dispatches
WHERE task_id = $1
ORDER BY created_at;`
	rows, err := r.pool.Query(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MessageDispatchRecord
	for rows.Next() {
		var rec model.MessageDispatchRecord
		var role, status string
		if err := rows.Scan(
			&rec.TaskID, &rec.CandidateID, &rec.CandidateName, &rec.ProfileRef,
			&rec.CompanyName, &role, &status, &rec.Method, &rec.Reason, &rec.Timestamp,
		); err != nil {
			return nil, err
		}
		rec.Role = model.RoleCategory(role)
		rec.Status = model.DispatchStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
