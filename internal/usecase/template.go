package usecase

import (
	"regexp"
	"strings"

	"serial-job-applier/internal/domain/model"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// RenderTemplate substitutes {placeholder} tokens from vars. Unknown
// placeholders are left intact so a typo is visible in the sent message
// review rather than silently blanked.
func RenderTemplate(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// FirstName extracts the leading name token for personalization.
func FirstName(displayName string) string {
	fields := strings.Fields(strings.TrimSpace(displayName))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// candidateVars merges the per-group template variables with the variables
// derived from the candidate itself. Candidate-derived values win so a group
// config cannot misattribute a name.
func candidateVars(c model.Candidate, groupVars map[string]string) map[string]string {
	vars := make(map[string]string, len(groupVars)+5)
	for k, v := range groupVars {
		vars[k] = v
	}
	vars["employee_name"] = FirstName(c.DisplayName)
	vars["employee_full_name"] = c.DisplayName
	vars["employee_title"] = c.Title
	vars["company_name"] = c.CompanyName
	vars["role"] = string(c.Category)
	return vars
}
