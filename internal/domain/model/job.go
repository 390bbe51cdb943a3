package model

type JobSearch struct {
	Title         string `json:"job_title"`
	Location      string `json:"location"`
	MonthlySalary int    `json:"monthly_salary,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

type JobPosting struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

type ApplicationResult struct {
	JobID   string `json:"job_id"`
	Title   string `json:"title"`
	Success bool   `json:"success"`
	Steps   int    `json:"steps"`
	Error   string `json:"error,omitempty"`
}
