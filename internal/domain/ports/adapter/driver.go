package adapter

import (
	"context"

	"serial-job-applier/internal/domain/model"
)

// AdvanceOutcome is the driver's report after attempting to move the form
// wizard forward.
type AdvanceOutcome string

const (
	OutcomeAdvanced  AdvanceOutcome = "advanced"
	OutcomeSubmitted AdvanceOutcome = "submitted"
	OutcomeBlocked   AdvanceOutcome = "blocked"
)

// MessageAffordance is what the target profile page offers for contacting a
// candidate. It is resolved once per candidate.
type MessageAffordance string

const (
	AffordanceDirectMessage     MessageAffordance = "direct_message"
	AffordanceConnectionRequest MessageAffordance = "connection_request"
	AffordanceNone              MessageAffordance = "none"
)

// BrowserDriver is the browser-automation capability. Its internals (driver,
// selectors, anti-detection) live in an external service; this port only
// names the operations the orchestration layer consumes. Every call is a
// suspension boundary: no store lock may be held across one.
type BrowserDriver interface {
	Authenticate(ctx context.Context, creds model.Credentials) error
	Navigate(ctx context.Context, url string) error
	ListVisibleFields(ctx context.Context) ([]model.FormField, error)
	SetValue(ctx context.Context, fieldID, value string) error
	SubmitOrAdvance(ctx context.Context) (AdvanceOutcome, error)

	SearchJobs(ctx context.Context, search model.JobSearch) ([]model.JobPosting, error)
	ListEmployees(ctx context.Context, companyURL, companyName string, limit int) ([]model.Candidate, error)
	MessageAffordance(ctx context.Context, profileRef string) (MessageAffordance, error)
	SendDirectMessage(ctx context.Context, profileRef, text string) error
	SendConnectionRequest(ctx context.Context, profileRef, note string) error
}
