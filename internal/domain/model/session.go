package model

import "time"

// OutreachSession bridges the two-phase outreach workflow. It is written once
// at the end of the search phase and read (never mutated) by the send phase
// until the TTL elapses.
type OutreachSession struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt time.Time              `json:"expires_at"`
	Payload   OutreachSessionPayload `json:"payload"`
}

func (s *OutreachSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type OutreachSessionPayload struct {
	RoleGroups         []RoleGroup `json:"role_groups"`
	TotalCandidates    int         `json:"total_candidates"`
	CompaniesProcessed int         `json:"companies_processed"`
	TraceID            string      `json:"trace_id,omitempty"`
}
