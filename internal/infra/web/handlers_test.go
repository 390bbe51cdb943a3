package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"

	"github.com/rs/zerolog"
)

type webFixture struct {
	tasks  *fakeTasks
	send   *fakeSend
	router http.Handler
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	f := &webFixture{tasks: newFakeTasks(), send: &fakeSend{}}
	log := zerolog.Nop()
	srv := NewServer(f.tasks, &fakeApply{}, &fakeSearch{}, f.send,
		&fakeCompanies{values: model.FilterValues{Industries: []string{"fintech"}, TotalCompanies: 3}},
		&fakeDispatches{}, &log)
	f.router = srv.Router()
	return f
}

func (f *webFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

const validApplyBody = `{
  "job_searches": [{"job_title": "Backend Engineer", "location": "Berlin"}],
  "credentials": {"email": "ada@example.com", "password": "pw"},
  "profile": {"name": "Ada"}
}`

func TestJobApplyAccepted(t *testing.T) {
	f := newWebFixture(t)
	rr := f.do(t, http.MethodPost, "/api/jobs/apply", validApplyBody)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["task_id"] == "" || resp["state"] != "pending" {
		t.Fatalf("response = %v", resp)
	}
	if len(f.tasks.submitted) != 1 || f.tasks.submitted[0] != model.TaskKindJobApply {
		t.Fatalf("submitted = %v", f.tasks.submitted)
	}
}

func TestJobApplyRejectsBadRequests(t *testing.T) {
	f := newWebFixture(t)

	if rr := f.do(t, http.MethodPost, "/api/jobs/apply", "{not json"); rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status = %d", rr.Code)
	}
	if rr := f.do(t, http.MethodPost, "/api/jobs/apply", `{"job_searches": []}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: status = %d", rr.Code)
	}
	if len(f.tasks.submitted) != 0 {
		t.Fatal("no task may be created for an invalid request")
	}
}

const validSendBody = `{
  "session_id": "sess-1",
  "selected_groups": {"Engineering": {"enabled": true, "message_template": "Hi {employee_name}"}},
  "credentials": {"email": "ada@example.com", "password": "pw"}
}`

func TestOutreachSendSessionPreflight(t *testing.T) {
	f := newWebFixture(t)

	f.send.validateErr = domain.ErrExpired
	if rr := f.do(t, http.MethodPost, "/api/outreach/send", validSendBody); rr.Code != http.StatusGone {
		t.Fatalf("expired session: status = %d", rr.Code)
	}

	f.send.validateErr = domain.ErrNotFound
	if rr := f.do(t, http.MethodPost, "/api/outreach/send", validSendBody); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown session: status = %d", rr.Code)
	}
	if len(f.tasks.submitted) != 0 {
		t.Fatal("preflight failures must not create tasks")
	}

	f.send.validateErr = nil
	if rr := f.do(t, http.MethodPost, "/api/outreach/send", validSendBody); rr.Code != http.StatusAccepted {
		t.Fatalf("valid send: status = %d", rr.Code)
	}
}

func TestOutreachSearchAccepted(t *testing.T) {
	f := newWebFixture(t)
	body := `{"filters": {"industries": ["fintech"]}, "credentials": {"email": "a@b.c", "password": "pw"}}`
	rr := f.do(t, http.MethodPost, "/api/outreach/search", body)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d body %s", rr.Code, rr.Body.String())
	}
}

func TestTaskStatusEndpoint(t *testing.T) {
	f := newWebFixture(t)
	f.do(t, http.MethodPost, "/api/jobs/apply", validApplyBody)

	rr := f.do(t, http.MethodGet, "/api/tasks/task-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var task model.Task
	_ = json.Unmarshal(rr.Body.Bytes(), &task)
	if task.ID != "task-1" || task.Kind != model.TaskKindJobApply {
		t.Fatalf("task = %+v", task)
	}

	if rr := f.do(t, http.MethodGet, "/api/tasks/unknown", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown task: status = %d", rr.Code)
	}
}

func TestQueueSaturationMapsTo503(t *testing.T) {
	f := newWebFixture(t)
	f.tasks.submitErr = domain.ErrQueueSaturated
	rr := f.do(t, http.MethodPost, "/api/jobs/apply", validApplyBody)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestBusyAccountMapsTo409(t *testing.T) {
	f := newWebFixture(t)
	f.tasks.submitErr = domain.ErrAccountBusy
	rr := f.do(t, http.MethodPost, "/api/outreach/search",
		`{"credentials": {"email": "a@b.c", "password": "pw"}}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestFilterValuesEndpoint(t *testing.T) {
	f := newWebFixture(t)
	rr := f.do(t, http.MethodGet, "/api/outreach/filters", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var values model.FilterValues
	_ = json.Unmarshal(rr.Body.Bytes(), &values)
	if values.TotalCompanies != 3 || len(values.Industries) != 1 {
		t.Fatalf("values = %+v", values)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newWebFixture(t)
	if rr := f.do(t, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
