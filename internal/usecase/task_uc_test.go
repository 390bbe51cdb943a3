package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/infra/worker"

	"github.com/rs/zerolog"
)

func newTaskUC(t *testing.T, repo *memTaskRepo, watcher *captureWatcher) (*taskUC, *worker.Pool) {
	t.Helper()
	pool := worker.NewPool(2, zerolog.Nop())
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	log := zerolog.Nop()
	return NewTaskUseCase(repo, pool, watcher, time.Minute, &log), pool
}

func waitTerminal(t *testing.T, repo *memTaskRepo, id string) *model.Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, err := repo.FindByID(context.Background(), id)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if task.State.Terminal() {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("task never reached a terminal state")
	return nil
}

func TestSubmitReturnsBeforeWorkFinishes(t *testing.T) {
	repo := newMemTaskRepo()
	watcher := newCaptureWatcher()
	uc, _ := newTaskUC(t, repo, watcher)

	release := make(chan struct{})
	task, err := uc.Submit(context.Background(), model.TaskKindJobApply, func(ctx context.Context, taskID string) (string, error) {
		<-release
		return "done-ref", nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if task.State != model.TaskStatePending {
		t.Fatalf("submitted task state = %q, want pending", task.State)
	}
	if _, ok := watcher.expected[task.ID]; !ok {
		t.Fatal("submit must arm the result watcher")
	}

	close(release)
	final := waitTerminal(t, repo, task.ID)
	if final.State != model.TaskStateCompleted || final.ResultRef != "done-ref" {
		t.Fatalf("final task = %+v", final)
	}
}

func TestSubmitRejectsUnknownKind(t *testing.T) {
	repo := newMemTaskRepo()
	uc, _ := newTaskUC(t, repo, newCaptureWatcher())
	_, err := uc.Submit(context.Background(), model.TaskKind("mystery"), func(ctx context.Context, taskID string) (string, error) {
		return "", nil
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestFailureKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{fmt.Errorf("publish: %w", domain.ErrDeliveryFailed), model.FailDelivery},
		{fmt.Errorf("field: %w", domain.ErrUnfillableField), model.FailUnfillable},
		{fmt.Errorf("bad request: %w", domain.ErrInvalidArgument), model.FailValidation},
		{fmt.Errorf("stale: %w", domain.ErrExpired), model.FailValidation},
		{errors.New("browser exploded"), model.FailWork},
	}

	repo := newMemTaskRepo()
	uc, _ := newTaskUC(t, repo, newCaptureWatcher())
	for _, tc := range cases {
		task, err := uc.Submit(context.Background(), model.TaskKindOutreachSend, func(ctx context.Context, taskID string) (string, error) {
			return "", tc.err
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		final := waitTerminal(t, repo, task.ID)
		if final.State != model.TaskStateFailed || final.ErrorKind != tc.kind {
			t.Errorf("err %v: got state=%q kind=%q, want failed/%q", tc.err, final.State, final.ErrorKind, tc.kind)
		}
	}
}

func TestSubmitSaturatedQueueFailsTask(t *testing.T) {
	repo := newMemTaskRepo()
	// Pool is never started, so its buffer (workers*4) fills up.
	pool := worker.NewPool(1, zerolog.Nop())
	log := zerolog.Nop()
	uc := NewTaskUseCase(repo, pool, newCaptureWatcher(), time.Minute, &log)

	noop := func(ctx context.Context, taskID string) (string, error) { return "", nil }
	var saturatedErr error
	var lastID string
	for i := 0; i < 8; i++ {
		task, err := uc.Submit(context.Background(), model.TaskKindJobApply, noop)
		if err != nil {
			saturatedErr = err
			break
		}
		lastID = task.ID
	}
	if !errors.Is(saturatedErr, domain.ErrQueueSaturated) {
		t.Fatalf("err = %v, want ErrQueueSaturated", saturatedErr)
	}
	_ = lastID

	// The overflow task must still exist and be failed, not dangle pending.
	var failed int
	for _, task := range repo.tasks {
		if task.State == model.TaskStateFailed {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("failed tasks = %d, want exactly the overflow one", failed)
	}
}

func TestFailTimeoutLeavesTerminalTasksAlone(t *testing.T) {
	repo := newMemTaskRepo()
	uc, _ := newTaskUC(t, repo, newCaptureWatcher())

	task, err := uc.Submit(context.Background(), model.TaskKindOutreachSearch, func(ctx context.Context, taskID string) (string, error) {
		return "sess-1", nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	final := waitTerminal(t, repo, task.ID)
	if final.State != model.TaskStateCompleted {
		t.Fatalf("state = %q", final.State)
	}

	// A late timeout callback must not flip a completed task.
	uc.FailTimeout(task.ID)
	after, _ := repo.FindByID(context.Background(), task.ID)
	if after.State != model.TaskStateCompleted {
		t.Fatalf("timeout overwrote terminal state: %q", after.State)
	}

	// But a stuck pending task does get timed out.
	stuck := &model.Task{ID: "stuck", Kind: model.TaskKindJobApply, State: model.TaskStatePending, CreatedAt: time.Now()}
	_ = repo.Create(context.Background(), stuck)
	uc.FailTimeout("stuck")
	got, _ := repo.FindByID(context.Background(), "stuck")
	if got.State != model.TaskStateFailed || got.ErrorKind != model.FailTimeout {
		t.Fatalf("stuck task = %+v", got)
	}
}
