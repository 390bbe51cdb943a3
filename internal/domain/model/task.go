package model

import "time"

type TaskKind string

const (
	TaskKindJobApply       TaskKind = "job_apply"
	TaskKindOutreachSearch TaskKind = "outreach_search"
	TaskKindOutreachSend   TaskKind = "outreach_send"
)

func (k TaskKind) Valid() bool {
	switch k {
	case TaskKindJobApply, TaskKindOutreachSearch, TaskKindOutreachSend:
		return true
	}
	return false
}

type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
)

// Terminal reports whether the state is final. Completed and Failed tasks
// are immutable; every transition into them is compare-and-set.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateFailed
}

// Failure kinds recorded on failed tasks. A delivery failure is kept distinct
// from a work failure because the underlying automation may have fully
// succeeded while only the result notification failed.
const (
	FailValidation = "validation"
	FailWork       = "work_error"
	FailDelivery   = "delivery_error"
	FailTimeout    = "timeout"
	FailUnfillable = "unfillable_field"
	FailCapability = "capability_error"
)

// Task is one unit of submitted asynchronous work with a tracked lifecycle.
type Task struct {
	ID          string     `json:"id"`
	Kind        TaskKind   `json:"kind"`
	State       TaskState  `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorKind   string     `json:"error_kind,omitempty"`
	Error       string     `json:"error,omitempty"`
	ResultRef   string     `json:"result_ref,omitempty"`
}
