package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/domain/ports/repository"
	"serial-job-applier/internal/infra/logging"
	"serial-job-applier/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// connectionNoteLimit is the platform's hard length cap on connection
// request notes, counted in characters.
const connectionNoteLimit = 300

// Compile-time check
var _ OutreachSendUseCase = (*outreachSendUC)(nil)

type OutreachSendUseCase interface {
	// Validate resolves the session before a task is created, so a stale or
	// unknown session id fails the request instead of a task.
	Validate(ctx context.Context, sessionID string) error
	// Run executes phase two: message every eligible candidate of the
	// selected role groups under the daily cap.
	Run(ctx context.Context, taskID string, req model.OutreachSendRequest) (*model.OutreachSendResult, error)
}

type outreachSendUC struct {
	sessions  repository.SessionStore
	dispatch  repository.DispatchLogRepository
	quota     repository.SendQuota
	locker    repository.AccountLocker
	driver    adapter.BrowserDriver
	publisher adapter.ResultPublisher
	outreach  config.OutreachConfig
	form      config.FormConfig
	log       *zerolog.Logger

	// injected in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOutreachSendUseCase(
	sessions repository.SessionStore,
	dispatch repository.DispatchLogRepository,
	quota repository.SendQuota,
	locker repository.AccountLocker,
	driver adapter.BrowserDriver,
	publisher adapter.ResultPublisher,
	outreach config.OutreachConfig,
	form config.FormConfig,
	log *zerolog.Logger,
) *outreachSendUC {
	l := log.With().Str("component", "OutreachSendUseCase").Logger()
	return &outreachSendUC{
		sessions:  sessions,
		dispatch:  dispatch,
		quota:     quota,
		locker:    locker,
		driver:    driver,
		publisher: publisher,
		outreach:  outreach,
		form:      form,
		log:       &l,
		sleep:     ctxSleep,
	}
}

func (u *outreachSendUC) Validate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidArgument
	}
	_, err := u.sessions.Read(ctx, sessionID)
	return err
}

func (u *outreachSendUC) Run(ctx context.Context, taskID string, req model.OutreachSendRequest) (*model.OutreachSendResult, error) {
	if req.Credentials.Email == "" || len(req.SelectedGroups) == 0 {
		return nil, fmt.Errorf("outreach send needs credentials and selected groups: %w", domain.ErrInvalidArgument)
	}
	ctx = logging.WithTaskID(logging.WithSessionID(logging.WithAccount(ctx, req.Credentials.Email), req.SessionID), taskID)
	log := logging.With(ctx, u.log)

	session, err := u.sessions.Read(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	candidates := selectCandidates(session.Payload.RoleGroups, req)
	limit := u.outreach.DailyLimit
	if req.WarmUp {
		limit = u.outreach.WarmupLimit
	}

	token, err := u.locker.TryLock(ctx, req.Credentials.Email, accountLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if uerr := u.locker.Unlock(context.Background(), req.Credentials.Email, token); uerr != nil {
			log.Warn().Err(uerr).Msg("account unlock failed")
		}
	}()

	if err := withRetry(ctx, u.form.RetryAttempts, u.form.RetryBackoff, func() error {
		return u.driver.Authenticate(ctx, req.Credentials)
	}); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	result := &model.OutreachSendResult{
		TaskID:        taskID,
		ResultsByRole: make(map[string]model.RoleTally),
	}
	perCompany := make(map[string]int)

	for i, cand := range candidates {
		rec := model.MessageDispatchRecord{
			TaskID:        taskID,
			CandidateID:   cand.candidate.ID,
			CandidateName: cand.candidate.DisplayName,
			ProfileRef:    cand.candidate.ProfileRef,
			CompanyName:   cand.candidate.CompanyName,
			Role:          cand.candidate.Category,
			Timestamp:     time.Now().UTC(),
		}

		if ctx.Err() != nil {
			// Everything already sent stands; the remainder is recorded so
			// the audit trail shows why they were never attempted.
			rec.Status, rec.Reason = model.DispatchSkipped, model.ReasonCancelled
			u.record(ctx, result, rec, log)
			continue
		}

		company := strings.ToLower(cand.candidate.CompanyName)
		if req.MaxPerCompany > 0 && perCompany[company] >= req.MaxPerCompany {
			rec.Status, rec.Reason = model.DispatchSkipped, model.ReasonCompanyCap
			u.record(ctx, result, rec, log)
			continue
		}

		ok, err := u.quota.Reserve(ctx, req.Credentials.Email, limit)
		if err != nil {
			rec.Status, rec.Reason = model.DispatchFailed, fmt.Sprintf("quota: %v", err)
			u.record(ctx, result, rec, log)
			continue
		}
		if !ok {
			metrics.QuotaBlocked()
			rec.Status, rec.Reason = model.DispatchSkipped, model.ReasonCapReached
			u.record(ctx, result, rec, log)
			continue
		}

		sent := u.message(ctx, cand, &rec, log)
		u.record(ctx, result, rec, log)
		if sent {
			perCompany[company]++
		}

		// Randomized pacing between network attempts; no delay after a skip
		// and none after the final candidate.
		if rec.Status != model.DispatchSkipped && i < len(candidates)-1 {
			if err := u.sleep(ctx, u.sendDelay()); err != nil {
				continue // cancellation is handled at the top of the loop
			}
		}
	}

	result.Errors = collectFailures(result.Records)
	if err := u.publisher.Publish(ctx, adapter.TopicOutreachResults, taskID, result); err != nil {
		return result, err
	}
	log.Info().Int("sent", result.MessagesSent).Int("records", len(result.Records)).Msg("send run finished")
	return result, nil
}

// message resolves the affordance and delivers through it, mutating rec with
// the outcome. Returns whether a message actually went out.
func (u *outreachSendUC) message(ctx context.Context, cand selectedCandidate, rec *model.MessageDispatchRecord, log *zerolog.Logger) bool {
	affordance, err := u.driver.MessageAffordance(ctx, cand.candidate.ProfileRef)
	if err != nil {
		rec.Status, rec.Reason = model.DispatchFailed, fmt.Sprintf("affordance: %v", err)
		return false
	}
	if affordance == adapter.AffordanceNone {
		rec.Status, rec.Reason = model.DispatchSkipped, model.ReasonNoAffordance
		return false
	}

	text := RenderTemplate(cand.config.MessageTemplate, candidateVars(cand.candidate, cand.config.TemplateVariables))
	switch affordance {
	case adapter.AffordanceDirectMessage:
		rec.Method = "direct_message"
		err = u.driver.SendDirectMessage(ctx, cand.candidate.ProfileRef, text)
	case adapter.AffordanceConnectionRequest:
		rec.Method = "connection_request"
		err = u.driver.SendConnectionRequest(ctx, cand.candidate.ProfileRef, truncateRunes(text, connectionNoteLimit))
	}
	if err != nil {
		rec.Status, rec.Reason = model.DispatchFailed, err.Error()
		log.Warn().Err(err).Str("profile", cand.candidate.ProfileRef).Msg("message delivery failed")
		return false
	}
	rec.Status = model.DispatchSent
	return true
}

func (u *outreachSendUC) record(ctx context.Context, result *model.OutreachSendResult, rec model.MessageDispatchRecord, log *zerolog.Logger) {
	metrics.MessageDispatched(string(rec.Status), rec.Method)
	if err := u.dispatch.Append(ctx, &rec); err != nil {
		log.Warn().Err(err).Str("candidate", rec.CandidateID).Msg("could not persist dispatch record")
	}
	result.Records = append(result.Records, rec)
	tally := result.ResultsByRole[string(rec.Role)]
	switch rec.Status {
	case model.DispatchSent:
		tally.Sent++
		result.MessagesSent++
	case model.DispatchSkipped:
		tally.Skipped++
	case model.DispatchFailed:
		tally.Failed++
	}
	result.ResultsByRole[string(rec.Role)] = tally
}

func (u *outreachSendUC) sendDelay() time.Duration {
	min, max := u.outreach.DelayMin, u.outreach.DelayMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// selectedCandidate pairs a candidate with the messaging config of its
// effective group.
type selectedCandidate struct {
	candidate model.Candidate
	config    model.RoleGroupConfig
}

// selectCandidates flattens the session's groups into the ordered send list:
// reassignments move candidates between groups first, then only enabled
// groups (and, when given, only selected profiles) survive.
func selectCandidates(groups []model.RoleGroup, req model.OutreachSendRequest) []selectedCandidate {
	selectedProfiles := lowerSet(req.SelectedProfiles)
	var out []selectedCandidate
	for _, group := range groups {
		for _, cand := range group.Members {
			category := group.Category
			if target, ok := req.Reassignments[cand.ProfileRef]; ok && target.Valid() {
				category = target
			}
			cfg, ok := req.SelectedGroups[string(category)]
			if !ok || !cfg.Enabled {
				continue
			}
			if len(selectedProfiles) > 0 {
				if _, ok := selectedProfiles[strings.ToLower(cand.ProfileRef)]; !ok {
					continue
				}
			}
			cand.Category = category
			out = append(out, selectedCandidate{candidate: cand, config: cfg})
		}
	}
	return out
}

func collectFailures(records []model.MessageDispatchRecord) []string {
	var errs []string
	for _, r := range records {
		if r.Status == model.DispatchFailed {
			errs = append(errs, fmt.Sprintf("%s: %s", r.CandidateName, r.Reason))
		}
	}
	return errs
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
