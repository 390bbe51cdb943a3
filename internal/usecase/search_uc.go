package usecase

import (
	"context"
	"fmt"
	"strings"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/domain/ports/repository"
	"serial-job-applier/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ OutreachSearchUseCase = (*outreachSearchUC)(nil)

type OutreachSearchUseCase interface {
	// Run executes phase one of the outreach workflow and returns the id of
	// the session the send phase will consume.
	Run(ctx context.Context, taskID string, req model.OutreachSearchRequest) (sessionID string, err error)
}

type outreachSearchUC struct {
	companies  repository.CompanyRepository
	sessions   repository.SessionStore
	driver     adapter.BrowserDriver
	llm        adapter.LanguageModel
	locker     repository.AccountLocker
	publisher  adapter.ResultPublisher
	outreach   config.OutreachConfig
	form       config.FormConfig // retry knobs for idempotent capability calls
	sessionTTL config.SessionConfig
	log        *zerolog.Logger
}

func NewOutreachSearchUseCase(
	companies repository.CompanyRepository,
	sessions repository.SessionStore,
	driver adapter.BrowserDriver,
	llm adapter.LanguageModel,
	locker repository.AccountLocker,
	publisher adapter.ResultPublisher,
	outreach config.OutreachConfig,
	form config.FormConfig,
	sessionTTL config.SessionConfig,
	log *zerolog.Logger,
) *outreachSearchUC {
	l := log.With().Str("component", "OutreachSearchUseCase").Logger()
	return &outreachSearchUC{
		companies:  companies,
		sessions:   sessions,
		driver:     driver,
		llm:        llm,
		locker:     locker,
		publisher:  publisher,
		outreach:   outreach,
		form:       form,
		sessionTTL: sessionTTL,
		log:        &l,
	}
}

func (u *outreachSearchUC) Run(ctx context.Context, taskID string, req model.OutreachSearchRequest) (string, error) {
	if req.Credentials.Email == "" {
		return "", fmt.Errorf("outreach search needs credentials: %w", domain.ErrInvalidArgument)
	}
	ctx = logging.WithTaskID(logging.WithAccount(ctx, req.Credentials.Email), taskID)
	log := logging.With(ctx, u.log)

	filter := req.Filters
	if req.CompanyLimit > 0 {
		filter.Limit = req.CompanyLimit
	}
	companies, err := u.companies.Filter(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("filter companies: %w", err)
	}

	token, err := u.locker.TryLock(ctx, req.Credentials.Email, accountLockTTL)
	if err != nil {
		return "", err
	}
	defer func() {
		if uerr := u.locker.Unlock(context.Background(), req.Credentials.Email, token); uerr != nil {
			log.Warn().Err(uerr).Msg("account unlock failed")
		}
	}()

	if err := withRetry(ctx, u.form.RetryAttempts, u.form.RetryBackoff, func() error {
		return u.driver.Authenticate(ctx, req.Credentials)
	}); err != nil {
		return "", fmt.Errorf("authenticate: %w", err)
	}

	result := &model.OutreachSearchResult{TaskID: taskID}
	classifier := NewRoleClassifier(u.llm)
	byCategory := make(map[model.RoleCategory][]model.Candidate)

	excludeCompany := lowerSet(req.ExcludeCompanies)
	excludeProfile := lowerSet(req.ExcludeProfiles)
	perCompany := u.outreach.EmployeesPerCompany

	for _, company := range companies {
		if ctx.Err() != nil {
			break
		}
		if req.TotalLimit > 0 && result.TotalCandidates >= req.TotalLimit {
			break
		}
		if _, skip := excludeCompany[strings.ToLower(company.Name)]; skip {
			continue
		}

		var employees []model.Candidate
		err := withRetry(ctx, u.form.RetryAttempts, u.form.RetryBackoff, func() error {
			var e error
			employees, e = u.driver.ListEmployees(ctx, company.LinkedInURL, company.Name, perCompany)
			return e
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("employees of %s: %v", company.Name, err))
			continue
		}
		result.CompaniesProcessed++

		for _, emp := range employees {
			if req.TotalLimit > 0 && result.TotalCandidates >= req.TotalLimit {
				break
			}
			if _, skip := excludeProfile[strings.ToLower(emp.ProfileRef)]; skip {
				continue
			}
			if emp.CompanyName == "" {
				emp.CompanyName = company.Name
			}
			emp.Category = classifier.Classify(ctx, emp.Title)
			byCategory[emp.Category] = append(byCategory[emp.Category], emp)
			result.TotalCandidates++
		}
	}

	// Fixed display order; a candidate lands in exactly one group.
	for _, cat := range model.RoleCategories() {
		if members := byCategory[cat]; len(members) > 0 {
			result.RoleGroups = append(result.RoleGroups, model.RoleGroup{Category: cat, Members: members})
		}
	}

	session, err := u.sessions.Create(ctx, model.OutreachSessionPayload{
		RoleGroups:         result.RoleGroups,
		TotalCandidates:    result.TotalCandidates,
		CompaniesProcessed: result.CompaniesProcessed,
		TraceID:            taskID,
	}, u.sessionTTL.TTL)
	if err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	result.SessionID = session.ID

	// The completion signal goes out first, keyed by session id, so a
	// consumer chaining into the send phase unblocks as soon as possible.
	signal := model.SearchCompleteSignal{
		SessionID:          session.ID,
		TaskID:             taskID,
		TotalCandidates:    result.TotalCandidates,
		CompaniesProcessed: result.CompaniesProcessed,
	}
	if err := u.publisher.Publish(ctx, adapter.TopicSearchComplete, session.ID, signal); err != nil {
		return session.ID, err
	}
	if err := u.publisher.Publish(ctx, adapter.TopicOutreachSearchResults, taskID, result); err != nil {
		return session.ID, err
	}

	log.Info().Str("session_id", session.ID).
		Int("candidates", result.TotalCandidates).
		Int("companies", result.CompaniesProcessed).
		Msg("search run finished")
	return session.ID, nil
}

func lowerSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
