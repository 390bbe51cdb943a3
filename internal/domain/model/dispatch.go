package model

import "time"

type DispatchStatus string

const (
	DispatchSent    DispatchStatus = "sent"
	DispatchSkipped DispatchStatus = "skipped"
	DispatchFailed  DispatchStatus = "failed"
)

// Skip/failure reasons recorded on dispatch records.
const (
	ReasonCapReached   = "cap_reached"
	ReasonNoAffordance = "no_affordance"
	ReasonCancelled    = "cancelled"
	ReasonCompanyCap   = "company_cap_reached"
)

// MessageDispatchRecord is an append-only audit entry, one per candidate per
// send attempt. A sent record stands even if the task is cancelled afterwards.
type MessageDispatchRecord struct {
	TaskID        string         `json:"task_id"`
	CandidateID   string         `json:"candidate_id"`
	CandidateName string         `json:"candidate_name"`
	ProfileRef    string         `json:"profile_ref"`
	CompanyName   string         `json:"company_name"`
	Role          RoleCategory   `json:"role"`
	Status        DispatchStatus `json:"status"`
	Method        string         `json:"method,omitempty"` // direct_message | connection_request
	Reason        string         `json:"reason,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}
