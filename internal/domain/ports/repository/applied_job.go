package repository

import "context"

// AppliedJobRepository remembers which job postings have already been applied
// to, so a later run never re-submits the same application.
type AppliedJobRepository interface {
	WasApplied(ctx context.Context, jobID string) (bool, error)
	Record(ctx context.Context, jobID string, success bool, applyErr string) error
}
