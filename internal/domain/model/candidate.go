package model

// RoleCategory is the fixed enumeration candidates are bucketed into.
type RoleCategory string

const (
	RoleEngineering RoleCategory = "Engineering"
	RoleFinance     RoleCategory = "Finance"
	RoleInvestment  RoleCategory = "Investment Banking / M&A"
	RoleConsulting  RoleCategory = "Strategy Consulting"
	RoleCrypto      RoleCategory = "Crypto / Web3"
	RoleSales       RoleCategory = "Sales"
	RoleMarketing   RoleCategory = "Marketing"
	RoleHR          RoleCategory = "HR/People"
	RoleOperations  RoleCategory = "Operations"
	RoleExecutive   RoleCategory = "Executive"
	RoleOther       RoleCategory = "Other" // catch-all default
)

// RoleCategories returns the enumeration in its fixed display order.
func RoleCategories() []RoleCategory {
	return []RoleCategory{
		RoleEngineering,
		RoleFinance,
		RoleInvestment,
		RoleConsulting,
		RoleCrypto,
		RoleSales,
		RoleMarketing,
		RoleHR,
		RoleOperations,
		RoleExecutive,
		RoleOther,
	}
}

func (c RoleCategory) Valid() bool {
	for _, v := range RoleCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// Candidate is a person eligible for outreach. Immutable after classification.
type Candidate struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Title       string       `json:"title"`
	ProfileRef  string       `json:"profile_ref"`
	CompanyName string       `json:"company_name"`
	Category    RoleCategory `json:"category"`
}

// RoleGroup is a named bucket of classified candidates. Member order is the
// order candidates were discovered in.
type RoleGroup struct {
	Category RoleCategory `json:"category"`
	Members  []Candidate  `json:"members"`
}
