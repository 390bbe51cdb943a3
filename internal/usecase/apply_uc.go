package usecase

import (
	"context"
	"fmt"
	"time"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/domain/ports/repository"
	"serial-job-applier/internal/infra/logging"

	"github.com/rs/zerolog"
)

// accountLockTTL bounds how long a crashed worker can keep an account
// exclusively held before the lock falls off on its own.
const accountLockTTL = 30 * time.Minute

// Compile-time check
var _ JobApplyUseCase = (*jobApplyUC)(nil)

type JobApplyUseCase interface {
	// Run executes the whole apply workflow for one task: search postings,
	// drop duplicates, walk each form, record and publish the outcome.
	Run(ctx context.Context, taskID string, req model.JobApplyRequest) (*model.JobApplyResult, error)
}

type jobApplyUC struct {
	driver    adapter.BrowserDriver
	forms     *FormRunner
	applied   repository.AppliedJobRepository
	locker    repository.AccountLocker
	publisher adapter.ResultPublisher
	cfg       config.FormConfig
	log       *zerolog.Logger
}

func NewJobApplyUseCase(
	driver adapter.BrowserDriver,
	forms *FormRunner,
	applied repository.AppliedJobRepository,
	locker repository.AccountLocker,
	publisher adapter.ResultPublisher,
	cfg config.FormConfig,
	log *zerolog.Logger,
) *jobApplyUC {
	l := log.With().Str("component", "JobApplyUseCase").Logger()
	return &jobApplyUC{
		driver:    driver,
		forms:     forms,
		applied:   applied,
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
		log:       &l,
	}
}

func (u *jobApplyUC) Run(ctx context.Context, taskID string, req model.JobApplyRequest) (*model.JobApplyResult, error) {
	if len(req.Searches) == 0 || req.Credentials.Email == "" {
		return nil, fmt.Errorf("job apply needs credentials and at least one search: %w", domain.ErrInvalidArgument)
	}
	ctx = logging.WithTaskID(logging.WithAccount(ctx, req.Credentials.Email), taskID)
	log := logging.With(ctx, u.log)

	token, err := u.locker.TryLock(ctx, req.Credentials.Email, accountLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := u.locker.Unlock(context.Background(), req.Credentials.Email, token); uerr != nil {
			log.Warn().Err(uerr).Msg("account unlock failed")
		}
	}()

	if err := withRetry(ctx, u.cfg.RetryAttempts, u.cfg.RetryBackoff, func() error {
		return u.driver.Authenticate(ctx, req.Credentials)
	}); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	result := &model.JobApplyResult{TaskID: taskID}
	for _, search := range req.Searches {
		var postings []model.JobPosting
		err := withRetry(ctx, u.cfg.RetryAttempts, u.cfg.RetryBackoff, func() error {
			var e error
			postings, e = u.driver.SearchJobs(ctx, search)
			return e
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("search %q: %v", search.Title, err))
			continue
		}
		result.TotalFound += len(postings)
		u.applyAll(ctx, postings, req.Profile, result, log)
		if ctx.Err() != nil {
			break
		}
	}

	if err := u.publisher.Publish(ctx, adapter.TopicJobResults, taskID, result); err != nil {
		return result, err
	}
	log.Info().Int("found", result.TotalFound).Int("applied", result.TotalApplied).Msg("apply run finished")
	return result, nil
}

func (u *jobApplyUC) applyAll(ctx context.Context, postings []model.JobPosting, profile map[string]string, result *model.JobApplyResult, log *zerolog.Logger) {
	for _, job := range postings {
		if ctx.Err() != nil {
			return
		}
		seen, err := u.applied.WasApplied(ctx, job.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dedupe %s: %v", job.ID, err))
			continue
		}
		if seen {
			result.TotalFiltered++
			continue
		}

		app := model.ApplicationResult{JobID: job.ID, Title: job.Title}
		outcome, runErr := u.forms.Run(ctx, job.URL, profile)
		app.Steps = outcome.Steps
		switch {
		case runErr != nil:
			app.Error = runErr.Error()
		case outcome.Completed():
			app.Success = true
			result.TotalApplied++
		default:
			app.Error = outcome.Reason
		}

		if err := u.applied.Record(ctx, job.ID, app.Success, app.Error); err != nil {
			log.Warn().Err(err).Str("job_id", job.ID).Msg("could not record application")
		}
		result.Applications = append(result.Applications, app)
		if outcome != nil && outcome.unfillable() {
			log.Info().Str("job_id", job.ID).Msg("skipped posting with unfillable field")
		}
	}
}
