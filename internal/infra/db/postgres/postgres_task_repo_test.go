//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"

	"github.com/oklog/ulid/v2"
)

func newPendingTask(kind model.TaskKind) *model.Task {
	return &model.Task{
		ID:        ulid.Make().String(),
		Kind:      kind,
		State:     model.TaskStatePending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestTaskRepo_Lifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewTaskRepo(testPool)
	cleanup(t)

	task := newPendingTask(model.TaskKindJobApply)
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.MarkRunning(ctx, task.ID); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	// A second claim must lose the compare-and-set.
	if err := repo.MarkRunning(ctx, task.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second MarkRunning = %v, want ErrInvalidTransition", err)
	}

	if err := repo.MarkCompleted(ctx, task.ID, "session-123"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	// Terminal tasks are immutable.
	if err := repo.MarkFailed(ctx, task.ID, model.FailWork, "late failure"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("MarkFailed after completion = %v, want ErrInvalidTransition", err)
	}

	got, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.State != model.TaskStateCompleted || got.ResultRef != "session-123" || got.CompletedAt == nil {
		t.Fatalf("unexpected final task: %+v", got)
	}
}

func TestTaskRepo_FailFromPending_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewTaskRepo(testPool)
	cleanup(t)

	task := newPendingTask(model.TaskKindOutreachSend)
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.MarkFailed(ctx, task.ID, model.FailTimeout, "no completion signal"); err != nil {
		t.Fatalf("MarkFailed from pending: %v", err)
	}

	got, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.State != model.TaskStateFailed || got.ErrorKind != model.FailTimeout {
		t.Fatalf("unexpected failed task: %+v", got)
	}

	if _, err := repo.FindByID(ctx, "no-such-task"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing task = %v, want ErrNotFound", err)
	}
}

func TestDispatchRepo_AppendAndList_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewDispatchRepo(testPool)
	cleanup(t)

	recs := []model.MessageDispatchRecord{
		{TaskID: "t1", CandidateID: "c1", CandidateName: "Ada", ProfileRef: "/in/ada", CompanyName: "Acme", Role: model.RoleEngineering, Status: model.DispatchSent, Method: "direct_message", Timestamp: time.Now().UTC()},
		{TaskID: "t1", CandidateID: "c2", CandidateName: "Bo", ProfileRef: "/in/bo", CompanyName: "Acme", Role: model.RoleSales, Status: model.DispatchSkipped, Reason: model.ReasonCapReached, Timestamp: time.Now().UTC()},
		{TaskID: "t2", CandidateID: "c3", CandidateName: "Cy", ProfileRef: "/in/cy", CompanyName: "Globex", Role: model.RoleOther, Status: model.DispatchFailed, Reason: "driver error", Timestamp: time.Now().UTC()},
	}
	for i := range recs {
		if err := repo.Append(ctx, &recs[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := repo.ListByTask(ctx, "t1")
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByTask returned %d records, want 2", len(got))
	}
	if got[1].Reason != model.ReasonCapReached {
		t.Fatalf("skip reason = %q", got[1].Reason)
	}
}

func TestAppliedJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewAppliedJobRepo(testPool)
	cleanup(t)

	applied, err := repo.WasApplied(ctx, "job-1")
	if err != nil || applied {
		t.Fatalf("fresh job: applied=%v err=%v", applied, err)
	}
	if err := repo.Record(ctx, "job-1", false, "form blocked"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Retry overwrites the earlier outcome.
	if err := repo.Record(ctx, "job-1", true, ""); err != nil {
		t.Fatalf("Record upsert: %v", err)
	}
	applied, err = repo.WasApplied(ctx, "job-1")
	if err != nil || !applied {
		t.Fatalf("recorded job: applied=%v err=%v", applied, err)
	}
}
