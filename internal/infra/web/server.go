package web

import (
	"net/http"

	"serial-job-applier/internal/domain/ports/repository"
	"serial-job-applier/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes the workflow API: every workflow POST returns 202 with a
// task id immediately; results travel over the broker.
type Server struct {
	tasks     usecase.TaskUseCase
	apply     usecase.JobApplyUseCase
	search    usecase.OutreachSearchUseCase
	send      usecase.OutreachSendUseCase
	companies repository.CompanyRepository
	dispatch  repository.DispatchLogRepository
	log       *zerolog.Logger
}

func NewServer(
	tasks usecase.TaskUseCase,
	apply usecase.JobApplyUseCase,
	search usecase.OutreachSearchUseCase,
	send usecase.OutreachSendUseCase,
	companies repository.CompanyRepository,
	dispatch repository.DispatchLogRepository,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		tasks:     tasks,
		apply:     apply,
		search:    search,
		send:      send,
		companies: companies,
		dispatch:  dispatch,
		log:       logger,
	}
}

// Router builds the HTTP routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/jobs/apply", s.handleJobApply)
		r.Route("/outreach", func(r chi.Router) {
			r.Get("/filters", s.handleFilterValues)
			r.Post("/search", s.handleOutreachSearch)
			r.Post("/send", s.handleOutreachSend)
		})
		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", s.handleTaskStatus)
			r.Get("/dispatches", s.handleTaskDispatches)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
