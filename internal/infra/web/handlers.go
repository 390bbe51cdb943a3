package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleJobApply(w http.ResponseWriter, r *http.Request) {
	var req model.JobApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Searches) == 0 || req.Credentials.Email == "" || req.Credentials.Password == "" {
		http.Error(w, "credentials and at least one job search are required", http.StatusBadRequest)
		return
	}

	task, err := s.tasks.Submit(r.Context(), model.TaskKindJobApply, func(ctx context.Context, taskID string) (string, error) {
		_, err := s.apply.Run(ctx, taskID, req)
		return "", err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.accepted(w, task)
}

func (s *Server) handleOutreachSearch(w http.ResponseWriter, r *http.Request) {
	var req model.OutreachSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Credentials.Email == "" || req.Credentials.Password == "" {
		http.Error(w, "credentials are required", http.StatusBadRequest)
		return
	}

	task, err := s.tasks.Submit(r.Context(), model.TaskKindOutreachSearch, func(ctx context.Context, taskID string) (string, error) {
		// The session id doubles as the task's result reference so a client
		// polling the task can chain into the send phase.
		return s.search.Run(ctx, taskID, req)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.accepted(w, task)
}

func (s *Server) handleOutreachSend(w http.ResponseWriter, r *http.Request) {
	var req model.OutreachSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Credentials.Email == "" || req.Credentials.Password == "" || len(req.SelectedGroups) == 0 {
		http.Error(w, "credentials and selected groups are required", http.StatusBadRequest)
		return
	}

	// Resolve the session before creating a task: a stale session id should
	// cost the client a 4xx, not a failed task.
	if err := s.send.Validate(r.Context(), req.SessionID); err != nil {
		s.writeError(w, err)
		return
	}

	task, err := s.tasks.Submit(r.Context(), model.TaskKindOutreachSend, func(ctx context.Context, taskID string) (string, error) {
		_, err := s.send.Run(ctx, taskID, req)
		return "", err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.accepted(w, task)
}

func (s *Server) handleFilterValues(w http.ResponseWriter, r *http.Request) {
	values, err := s.companies.FilterValues(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskDispatches(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if _, err := s.tasks.Get(r.Context(), taskID); err != nil {
		s.writeError(w, err)
		return
	}
	records, err := s.dispatch.ListByTask(r.Context(), taskID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": taskID,
		"records": records,
	})
}

// accepted answers a workflow submission: the task exists, the work has not
// necessarily started.
func (s *Server) accepted(w http.ResponseWriter, task *model.Task) {
	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": task.ID,
		"state":   string(task.State),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrExpired):
		code = http.StatusGone
	case errors.Is(err, domain.ErrAccountBusy):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrQueueSaturated):
		code = http.StatusServiceUnavailable
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
