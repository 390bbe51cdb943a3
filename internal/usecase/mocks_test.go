package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/domain/ports/repository"

	"github.com/google/uuid"
)

// ---- task repository ----

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
}

var _ repository.TaskRepository = (*memTaskRepo)(nil)

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*model.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) transition(id string, from []model.TaskState, apply func(*model.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, s := range from {
		if t.State == s {
			apply(t)
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

func (r *memTaskRepo) MarkRunning(ctx context.Context, id string) error {
	return r.transition(id, []model.TaskState{model.TaskStatePending}, func(t *model.Task) {
		t.State = model.TaskStateRunning
	})
}

func (r *memTaskRepo) MarkCompleted(ctx context.Context, id string, resultRef string) error {
	return r.transition(id, []model.TaskState{model.TaskStateRunning}, func(t *model.Task) {
		now := time.Now().UTC()
		t.State, t.ResultRef, t.CompletedAt = model.TaskStateCompleted, resultRef, &now
	})
}

func (r *memTaskRepo) MarkFailed(ctx context.Context, id string, kind, reason string) error {
	return r.transition(id, []model.TaskState{model.TaskStatePending, model.TaskStateRunning}, func(t *model.Task) {
		now := time.Now().UTC()
		t.State, t.ErrorKind, t.Error, t.CompletedAt = model.TaskStateFailed, kind, reason, &now
	})
}

// ---- session store ----

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.OutreachSession
	now      func() time.Time
}

var _ repository.SessionStore = (*memSessionStore)(nil)

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*model.OutreachSession), now: time.Now}
}

func (s *memSessionStore) Create(ctx context.Context, payload model.OutreachSessionPayload, ttl time.Duration) (*model.OutreachSession, error) {
	if ttl < 0 {
		return nil, domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	sess := &model.OutreachSession{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Payload:   payload,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *memSessionStore) Read(ctx context.Context, id string) (*model.OutreachSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if sess.Expired(s.now().UTC()) {
		return nil, domain.ErrExpired
	}
	cp := *sess
	return &cp, nil
}

// ---- quota ----

type memQuota struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

var _ repository.SendQuota = (*memQuota)(nil)

func newMemQuota() *memQuota { return &memQuota{counts: make(map[string]int)} }

func (q *memQuota) Reserve(ctx context.Context, account string, limit int) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts[account]++
	return q.counts[account] <= limit, nil
}

// ---- account locker ----

type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	locks int
}

var _ repository.AccountLocker = (*memLocker)(nil)

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]string)} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return "", domain.ErrAccountBusy
	}
	token := uuid.NewString()
	l.held[key] = token
	l.locks++
	return token, nil
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return fmt.Errorf("lock not held with that token")
	}
	delete(l.held, key)
	return nil
}

// ---- dispatch log ----

type memDispatchRepo struct {
	mu      sync.Mutex
	records []model.MessageDispatchRecord
}

var _ repository.DispatchLogRepository = (*memDispatchRepo)(nil)

func newMemDispatchRepo() *memDispatchRepo { return &memDispatchRepo{} }

func (r *memDispatchRepo) Append(ctx context.Context, rec *model.MessageDispatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *memDispatchRepo) ListByTask(ctx context.Context, taskID string) ([]model.MessageDispatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MessageDispatchRecord
	for _, rec := range r.records {
		if rec.TaskID == taskID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ---- company repo ----

type memCompanyRepo struct {
	companies []model.Company
}

var _ repository.CompanyRepository = (*memCompanyRepo)(nil)

func (r *memCompanyRepo) Filter(ctx context.Context, f model.CompanyFilter) ([]model.Company, error) {
	match := func(vals []string, v string) bool {
		if len(vals) == 0 {
			return true
		}
		for _, x := range vals {
			if x == v {
				return true
			}
		}
		return false
	}
	var out []model.Company
	for _, c := range r.companies {
		if match(f.Industries, c.Industry) && match(f.Countries, c.Country) && match(f.Sizes, c.Size) {
			out = append(out, c)
			if f.Limit > 0 && len(out) >= f.Limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memCompanyRepo) FilterValues(ctx context.Context) (*model.FilterValues, error) {
	fv := &model.FilterValues{TotalCompanies: len(r.companies)}
	seen := map[string]map[string]bool{"i": {}, "c": {}, "s": {}}
	for _, c := range r.companies {
		if !seen["i"][c.Industry] {
			seen["i"][c.Industry] = true
			fv.Industries = append(fv.Industries, c.Industry)
		}
		if !seen["c"][c.Country] {
			seen["c"][c.Country] = true
			fv.Countries = append(fv.Countries, c.Country)
		}
		if !seen["s"][c.Size] {
			seen["s"][c.Size] = true
			fv.Sizes = append(fv.Sizes, c.Size)
		}
	}
	return fv, nil
}

// ---- applied jobs ----

type memAppliedRepo struct {
	mu      sync.Mutex
	applied map[string]bool
}

var _ repository.AppliedJobRepository = (*memAppliedRepo)(nil)

func newMemAppliedRepo() *memAppliedRepo { return &memAppliedRepo{applied: make(map[string]bool)} }

func (r *memAppliedRepo) WasApplied(ctx context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.applied[jobID]
	return ok, nil
}

func (r *memAppliedRepo) Record(ctx context.Context, jobID string, success bool, applyErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[jobID] = success
	return nil
}

// ---- language model ----

type fakeLLM struct {
	classifyFn func(text string, allowed []string) (string, error)
	generateFn func(prompt string) (string, error)
	calls      int
}

var _ adapter.LanguageModel = (*fakeLLM)(nil)

func (f *fakeLLM) Classify(ctx context.Context, text string, allowed []string) (string, error) {
	f.calls++
	if f.classifyFn == nil {
		return "", nil
	}
	return f.classifyFn(text, allowed)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.generateFn == nil {
		return "", nil
	}
	return f.generateFn(prompt)
}

// ---- browser driver ----

type sentMessage struct {
	profile string
	text    string
	method  string
}

// fakeDriver scripts the browser capability. Form steps are consumed in
// order; each step's fields are re-served until the step advances.
type fakeDriver struct {
	mu sync.Mutex

	authErr error

	// form machine script
	steps    [][]model.FormField
	outcomes []adapter.AdvanceOutcome
	step     int
	setCalls map[string][]string // fieldID -> values written

	// when set, overrides the scripted steps for every field read
	listFn func() ([]model.FormField, error)

	// after a value is set, clear the field's validation error unless the
	// field id is listed here with a remaining rejection count.
	rejections map[string]int

	jobs         map[string][]model.JobPosting // search title -> postings
	employees    map[string][]model.Candidate  // company name -> candidates
	employeesErr map[string]error

	affordances map[string]adapter.MessageAffordance
	sendErr     map[string]error
	sent        []sentMessage
}

var _ adapter.BrowserDriver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		setCalls:     make(map[string][]string),
		rejections:   make(map[string]int),
		jobs:         make(map[string][]model.JobPosting),
		employees:    make(map[string][]model.Candidate),
		employeesErr: make(map[string]error),
		affordances:  make(map[string]adapter.MessageAffordance),
		sendErr:      make(map[string]error),
	}
}

func (d *fakeDriver) Authenticate(ctx context.Context, creds model.Credentials) error {
	return d.authErr
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error { return nil }

func (d *fakeDriver) ListVisibleFields(ctx context.Context) ([]model.FormField, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listFn != nil {
		return d.listFn()
	}
	if d.step >= len(d.steps) {
		return nil, nil
	}
	out := make([]model.FormField, len(d.steps[d.step]))
	copy(out, d.steps[d.step])
	return out, nil
}

func (d *fakeDriver) SetValue(ctx context.Context, fieldID, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setCalls[fieldID] = append(d.setCalls[fieldID], value)
	if d.step >= len(d.steps) {
		return nil
	}
	for i := range d.steps[d.step] {
		f := &d.steps[d.step][i]
		if f.ID != fieldID {
			continue
		}
		f.CurrentValue = value
		if d.rejections[fieldID] > 0 {
			d.rejections[fieldID]--
			f.ValidationError = "value rejected"
		} else {
			f.ValidationError = ""
		}
	}
	return nil
}

func (d *fakeDriver) SubmitOrAdvance(ctx context.Context) (adapter.AdvanceOutcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.outcomes) == 0 {
		return adapter.OutcomeBlocked, nil
	}
	out := d.outcomes[0]
	d.outcomes = d.outcomes[1:]
	if out == adapter.OutcomeAdvanced {
		d.step++
	}
	return out, nil
}

func (d *fakeDriver) SearchJobs(ctx context.Context, search model.JobSearch) ([]model.JobPosting, error) {
	return d.jobs[search.Title], nil
}

func (d *fakeDriver) ListEmployees(ctx context.Context, companyURL, companyName string, limit int) ([]model.Candidate, error) {
	if err := d.employeesErr[companyName]; err != nil {
		return nil, err
	}
	emps := d.employees[companyName]
	if limit > 0 && len(emps) > limit {
		emps = emps[:limit]
	}
	return emps, nil
}

func (d *fakeDriver) MessageAffordance(ctx context.Context, profileRef string) (adapter.MessageAffordance, error) {
	if a, ok := d.affordances[profileRef]; ok {
		return a, nil
	}
	return adapter.AffordanceDirectMessage, nil
}

func (d *fakeDriver) SendDirectMessage(ctx context.Context, profileRef, text string) error {
	if err := d.sendErr[profileRef]; err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{profile: profileRef, text: text, method: "direct_message"})
	return nil
}

func (d *fakeDriver) SendConnectionRequest(ctx context.Context, profileRef, note string) error {
	if err := d.sendErr[profileRef]; err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{profile: profileRef, text: note, method: "connection_request"})
	return nil
}

// ---- publisher / watcher ----

type publishedMsg struct {
	topic         string
	correlationID string
	payload       json.RawMessage
}

type capturePublisher struct {
	mu        sync.Mutex
	published []publishedMsg
	failErr   error
}

var _ adapter.ResultPublisher = (*capturePublisher)(nil)

func (p *capturePublisher) Publish(ctx context.Context, topic, correlationID string, payload any) error {
	if p.failErr != nil {
		return p.failErr
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedMsg{topic: topic, correlationID: correlationID, payload: b})
	return nil
}

func (p *capturePublisher) byTopic(topic string) []publishedMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedMsg
	for _, m := range p.published {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

type captureWatcher struct {
	mu       sync.Mutex
	expected map[string]time.Duration
}

var _ adapter.ResultWatcher = (*captureWatcher)(nil)

func newCaptureWatcher() *captureWatcher {
	return &captureWatcher{expected: make(map[string]time.Duration)}
}

func (w *captureWatcher) Expect(correlationID string, timeout time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expected[correlationID] = timeout
}
