package model

// Credentials authenticate the automation driver against the target platform.
// They pass through to the capability and are never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OutreachSearchRequest starts phase one: filter companies, enumerate
// candidates, classify, group, persist a session.
type OutreachSearchRequest struct {
	Filters          CompanyFilter `json:"filters"`
	Credentials      Credentials   `json:"credentials"`
	CompanyLimit     int           `json:"company_limit,omitempty"`
	TotalLimit       int           `json:"total_limit,omitempty"`
	ExcludeCompanies []string      `json:"exclude_companies,omitempty"`
	ExcludeProfiles  []string      `json:"exclude_profile_urls,omitempty"`
}

// OutreachSearchResult is delivered on the outreach-search-results topic,
// correlated by the originating task id. SessionID is the required input to
// the send phase.
type OutreachSearchResult struct {
	TaskID             string      `json:"task_id"`
	SessionID          string      `json:"session_id"`
	RoleGroups         []RoleGroup `json:"role_groups"`
	TotalCandidates    int         `json:"total_candidates"`
	CompaniesProcessed int         `json:"companies_processed"`
	Errors             []string    `json:"errors,omitempty"`
}

// RoleGroupConfig configures messaging for a single role group in the send
// phase.
type RoleGroupConfig struct {
	Enabled           bool              `json:"enabled"`
	MessageTemplate   string            `json:"message_template"`
	TemplateVariables map[string]string `json:"template_variables,omitempty"`
}

// OutreachSendRequest starts phase two against a previously created session.
type OutreachSendRequest struct {
	SessionID        string                     `json:"session_id"`
	SelectedGroups   map[string]RoleGroupConfig `json:"selected_groups"`
	Credentials      Credentials                `json:"credentials"`
	WarmUp           bool                       `json:"warm_up,omitempty"`
	MaxPerCompany    int                        `json:"max_per_company,omitempty"`
	SelectedProfiles []string                   `json:"selected_profiles,omitempty"`
	// Reassignments moves candidates (keyed by profile reference) into a
	// different role group before sending, to correct classifier mistakes.
	Reassignments map[string]RoleCategory `json:"reassignments,omitempty"`
}

type RoleTally struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// OutreachSendResult is delivered on the outreach-results topic.
type OutreachSendResult struct {
	TaskID        string                  `json:"task_id"`
	Records       []MessageDispatchRecord `json:"records"`
	MessagesSent  int                     `json:"messages_sent"`
	ResultsByRole map[string]RoleTally    `json:"results_by_role"`
	Errors        []string                `json:"errors,omitempty"`
}

// SearchCompleteSignal is published on the search-complete-signal topic,
// correlated by session id, as soon as phase one has persisted its session.
type SearchCompleteSignal struct {
	SessionID          string `json:"session_id"`
	TaskID             string `json:"task_id"`
	TotalCandidates    int    `json:"total_candidates"`
	CompaniesProcessed int    `json:"companies_processed"`
}

// JobApplyRequest starts the job application workflow. Profile carries the
// applicant's CV-derived answers keyed by semantic label (name, email, phone,
// experience years, ...); the CV importer itself is an external collaborator.
type JobApplyRequest struct {
	Searches    []JobSearch       `json:"job_searches"`
	Credentials Credentials       `json:"credentials"`
	Profile     map[string]string `json:"profile"`
}

// JobApplyResult is delivered on the job-results topic.
type JobApplyResult struct {
	TaskID        string              `json:"task_id"`
	TotalFound    int                 `json:"total_jobs_found"`
	TotalFiltered int                 `json:"total_filtered"`
	TotalApplied  int                 `json:"total_applied"`
	Applications  []ApplicationResult `json:"application_results"`
	Errors        []string            `json:"errors,omitempty"`
}
