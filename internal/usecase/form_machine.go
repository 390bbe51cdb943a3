package usecase

import (
	"context"
	"fmt"
	"strings"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// FormPhase is the form machine's current activity. One wizard run walks
// loaded -> (analyzing -> filling -> validating -> advancing)* and terminates
// in submitting -> completed or in failed.
type FormPhase string

const (
	PhaseLoaded     FormPhase = "loaded"
	PhaseAnalyzing  FormPhase = "analyzing"
	PhaseFilling    FormPhase = "filling"
	PhaseValidating FormPhase = "validating"
	PhaseAdvancing  FormPhase = "advancing"
	PhaseSubmitting FormPhase = "submitting"
	PhaseCompleted  FormPhase = "completed"
	PhaseFailed     FormPhase = "failed"
)

// FormOutcome is the terminal report of one wizard run.
type FormOutcome struct {
	Phase   FormPhase
	Steps   int
	Answers map[string]string // field label -> value used
	Reason  string
}

func (o *FormOutcome) Completed() bool { return o.Phase == PhaseCompleted }

// FormRunner drives a multi-step application form through the browser
// capability. The target markup is never known in advance: each step is
// re-read from the live page, fields are resolved to values, validation
// errors trigger bounded refills.
type FormRunner struct {
	driver adapter.BrowserDriver
	llm    adapter.LanguageModel
	cfg    config.FormConfig
	log    zerolog.Logger
}

func NewFormRunner(driver adapter.BrowserDriver, llm adapter.LanguageModel, cfg config.FormConfig, log zerolog.Logger) *FormRunner {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 10
	}
	if cfg.MaxFillAttempts <= 0 {
		cfg.MaxFillAttempts = 3
	}
	return &FormRunner{
		driver: driver,
		llm:    llm,
		cfg:    cfg,
		log:    log.With().Str("component", "form_runner").Logger(),
	}
}

// Run walks the wizard at formURL to a terminal phase. The error return is
// non-nil only for context cancellation or driver transport failures; a form
// that could not be completed is reported through the outcome.
func (r *FormRunner) Run(ctx context.Context, formURL string, profile map[string]string) (*FormOutcome, error) {
	out := &FormOutcome{Phase: PhaseLoaded, Answers: make(map[string]string)}
	defer func() {
		metrics.FormRunFinished(string(out.Phase), out.Reason, out.Steps)
	}()

	err := withRetry(ctx, r.cfg.RetryAttempts, r.cfg.RetryBackoff, func() error {
		return r.driver.Navigate(ctx, formURL)
	})
	if err != nil {
		out.Phase, out.Reason = PhaseFailed, fmt.Sprintf("navigate: %v", err)
		return out, err
	}

	// attempts tracks refills per field across the whole run; a field id that
	// still carries a validation error after the bound makes the run fail.
	attempts := make(map[string]int)
	blockedStreak := 0

	for step := 1; step <= r.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			out.Phase, out.Reason = PhaseFailed, "cancelled"
			return out, err
		}
		out.Steps = step
		out.Phase = PhaseAnalyzing

		var fields []model.FormField
		err := withRetry(ctx, r.cfg.RetryAttempts, r.cfg.RetryBackoff, func() error {
			var e error
			fields, e = r.driver.ListVisibleFields(ctx)
			return e
		})
		if err != nil {
			out.Phase, out.Reason = PhaseFailed, fmt.Sprintf("read fields: %v", err)
			return out, err
		}

		out.Phase = PhaseFilling
		if err := r.fillStep(ctx, fields, profile, attempts, out); err != nil {
			return out, err
		}
		if out.Phase == PhaseFailed {
			return out, nil
		}

		out.Phase = PhaseValidating
		if err := r.revalidate(ctx, profile, attempts, out); err != nil {
			return out, err
		}
		if out.Phase == PhaseFailed {
			return out, nil
		}

		outcome, err := r.driver.SubmitOrAdvance(ctx)
		if err != nil {
			out.Phase, out.Reason = PhaseFailed, fmt.Sprintf("advance: %v", err)
			return out, err
		}
		switch outcome {
		case adapter.OutcomeSubmitted:
			out.Phase = PhaseCompleted
			return out, nil
		case adapter.OutcomeAdvanced:
			out.Phase = PhaseAdvancing
			blockedStreak = 0
		case adapter.OutcomeBlocked:
			// Validation surfaced only on the advance attempt; loop back into
			// the same step so the refill pass can see the errors.
			blockedStreak++
			if blockedStreak > r.cfg.MaxFillAttempts {
				out.Phase, out.Reason = PhaseFailed, "form blocked"
				return out, nil
			}
			r.log.Debug().Int("step", step).Msg("advance blocked, revalidating")
			step--
		}
	}

	out.Phase, out.Reason = PhaseFailed, "step bound exceeded"
	return out, nil
}

// fillStep writes a value into every empty fillable field of the current step.
func (r *FormRunner) fillStep(ctx context.Context, fields []model.FormField, profile map[string]string, attempts map[string]int, out *FormOutcome) error {
	for _, f := range fields {
		if f.Type == model.FieldFile || f.CurrentValue != "" {
			continue
		}
		value := r.resolveValue(ctx, f, profile, "")
		if value == "" {
			if f.Required {
				r.log.Warn().Str("field", f.Label).Msg("no value source for required field")
			}
			continue
		}
		if err := r.setField(ctx, f, value, attempts, out); err != nil {
			return err
		}
	}
	return nil
}

// revalidate re-reads the step and refills fields the page marked invalid or
// left required-and-empty, up to the per-field attempt bound. The pass count
// is bounded too: a page that re-renders with fresh field ids on every read
// would otherwise reset the per-field counter indefinitely.
func (r *FormRunner) revalidate(ctx context.Context, profile map[string]string, attempts map[string]int, out *FormOutcome) error {
	for pass := 0; pass <= r.cfg.MaxFillAttempts; pass++ {
		if err := ctx.Err(); err != nil {
			out.Phase, out.Reason = PhaseFailed, "cancelled"
			return err
		}
		fields, err := r.driver.ListVisibleFields(ctx)
		if err != nil {
			out.Phase, out.Reason = PhaseFailed, fmt.Sprintf("read fields: %v", err)
			return err
		}
		var invalid []model.FormField
		for _, f := range fields {
			if f.Type == model.FieldFile {
				continue
			}
			if f.ValidationError != "" || (f.Required && f.CurrentValue == "") {
				invalid = append(invalid, f)
			}
		}
		if len(invalid) == 0 {
			return nil
		}
		for _, f := range invalid {
			if attempts[f.ID] >= r.cfg.MaxFillAttempts {
				out.Phase = PhaseFailed
				out.Reason = model.FailUnfillable
				r.log.Warn().Str("field", f.Label).Str("validation", f.ValidationError).
					Msg("field still invalid after retry bound")
				return nil
			}
			value := r.resolveValue(ctx, f, profile, f.ValidationError)
			if err := r.setField(ctx, f, value, attempts, out); err != nil {
				return err
			}
		}
	}
	out.Phase = PhaseFailed
	out.Reason = model.FailUnfillable
	r.log.Warn().Msg("validation never converged within the refill pass bound")
	return nil
}

func (r *FormRunner) setField(ctx context.Context, f model.FormField, value string, attempts map[string]int, out *FormOutcome) error {
	attempts[f.ID]++
	if err := r.driver.SetValue(ctx, f.ID, value); err != nil {
		out.Phase, out.Reason = PhaseFailed, fmt.Sprintf("set %q: %v", f.Label, err)
		return err
	}
	out.Answers[f.Label] = value
	return nil
}

// resolveValue picks the value for a field in priority order: the applicant
// profile, a type-derived default, then the language model.
func (r *FormRunner) resolveValue(ctx context.Context, f model.FormField, profile map[string]string, validationHint string) string {
	if v := profileValue(f.Label, profile); v != "" && validationHint == "" {
		return v
	}

	switch f.Type {
	case model.FieldSelect, model.FieldRadio:
		if v := pickOption(ctx, r.llm, f, validationHint); v != "" {
			return v
		}
	case model.FieldCheckbox:
		if f.Required {
			return "true"
		}
		return ""
	}

	if r.llm == nil {
		return ""
	}
	prompt := fmt.Sprintf("A job application form asks: %q.", f.Label)
	if len(profile) > 0 {
		prompt += fmt.Sprintf(" Applicant facts: %s.", flattenProfile(profile))
	}
	if validationHint != "" {
		prompt += fmt.Sprintf(" The previous answer was rejected with: %q. Give a corrected answer.", validationHint)
	}
	v, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		r.log.Debug().Err(err).Str("field", f.Label).Msg("llm value generation failed")
		return ""
	}
	return strings.TrimSpace(v)
}

// pickOption chooses among a closed option set: exact/LLM choice when
// available, first non-placeholder option otherwise.
func pickOption(ctx context.Context, llm adapter.LanguageModel, f model.FormField, validationHint string) string {
	if len(f.Options) == 0 {
		return ""
	}
	if llm != nil {
		prompt := fmt.Sprintf("Pick the best option for the form question %q.", f.Label)
		if validationHint != "" {
			prompt += fmt.Sprintf(" The previous choice was rejected with: %q.", validationHint)
		}
		if v, err := llm.Classify(ctx, prompt, f.Options); err == nil {
			for _, opt := range f.Options {
				if strings.EqualFold(strings.TrimSpace(v), opt) {
					return opt
				}
			}
		}
	}
	for _, opt := range f.Options {
		low := strings.ToLower(strings.TrimSpace(opt))
		if low == "" || strings.HasPrefix(low, "select") || strings.HasPrefix(low, "choose") || low == "--" {
			continue
		}
		return opt
	}
	return f.Options[0]
}

// profileValue matches a field label against profile keys by normalized
// containment, so the key "phone" answers "Phone number (required)".
func profileValue(label string, profile map[string]string) string {
	norm := strings.ToLower(label)
	var bestKey, bestVal string
	for k, v := range profile {
		lk := strings.ToLower(k)
		if strings.Contains(norm, lk) && len(lk) > len(bestKey) {
			bestKey, bestVal = lk, v
		}
	}
	return bestVal
}

func flattenProfile(profile map[string]string) string {
	parts := make([]string, 0, len(profile))
	for k, v := range profile {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ", ")
}

// unfillable reports whether the run failed on a field that exhausted its
// fill attempts.
func (o *FormOutcome) unfillable() bool {
	return o.Phase == PhaseFailed && o.Reason == model.FailUnfillable
}
