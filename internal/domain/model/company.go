package model

// Company is one row of the imported company dataset (read-only here; the
// importer is an external collaborator).
type Company struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Country     string `json:"country"`
	Locality    string `json:"locality,omitempty"`
	Region      string `json:"region,omitempty"`
	Size        string `json:"size"`
	LinkedInURL string `json:"linkedin_url"`
	Website     string `json:"website,omitempty"`
}

// CompanyFilter selects companies by discrete dataset values. Empty slices
// match everything for that field.
type CompanyFilter struct {
	Industries []string `json:"industries,omitempty"`
	Countries  []string `json:"countries,omitempty"`
	Sizes      []string `json:"sizes,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// FilterValues lists the discrete values a client may filter on.
type FilterValues struct {
	Industries     []string `json:"industries"`
	Countries      []string `json:"countries"`
	Sizes          []string `json:"sizes"`
	TotalCompanies int      `json:"total_companies"`
}
