package web

import (
	"context"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/usecase"
)

type fakeTasks struct {
	submitted []model.TaskKind
	submitErr error
	tasks     map[string]*model.Task
}

var _ usecase.TaskUseCase = (*fakeTasks)(nil)

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: make(map[string]*model.Task)}
}

func (f *fakeTasks) Submit(ctx context.Context, kind model.TaskKind, run usecase.WorkFunc) (*model.Task, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, kind)
	task := &model.Task{ID: "task-1", Kind: kind, State: model.TaskStatePending, CreatedAt: time.Now()}
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeTasks) Get(ctx context.Context, id string) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTasks) FailTimeout(id string) {}

type fakeApply struct{}

var _ usecase.JobApplyUseCase = (*fakeApply)(nil)

func (f *fakeApply) Run(ctx context.Context, taskID string, req model.JobApplyRequest) (*model.JobApplyResult, error) {
	return &model.JobApplyResult{TaskID: taskID}, nil
}

type fakeSearch struct{}

var _ usecase.OutreachSearchUseCase = (*fakeSearch)(nil)

func (f *fakeSearch) Run(ctx context.Context, taskID string, req model.OutreachSearchRequest) (string, error) {
	return "session-1", nil
}

type fakeSend struct {
	validateErr error
}

var _ usecase.OutreachSendUseCase = (*fakeSend)(nil)

func (f *fakeSend) Validate(ctx context.Context, sessionID string) error { return f.validateErr }

func (f *fakeSend) Run(ctx context.Context, taskID string, req model.OutreachSendRequest) (*model.OutreachSendResult, error) {
	return &model.OutreachSendResult{TaskID: taskID}, nil
}

type fakeCompanies struct {
	values model.FilterValues
}

func (f *fakeCompanies) Filter(ctx context.Context, filter model.CompanyFilter) ([]model.Company, error) {
	return nil, nil
}

func (f *fakeCompanies) FilterValues(ctx context.Context) (*model.FilterValues, error) {
	return &f.values, nil
}

type fakeDispatches struct {
	records []model.MessageDispatchRecord
}

func (f *fakeDispatches) Append(ctx context.Context, rec *model.MessageDispatchRecord) error {
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeDispatches) ListByTask(ctx context.Context, taskID string) ([]model.MessageDispatchRecord, error) {
	var out []model.MessageDispatchRecord
	for _, r := range f.records {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}
