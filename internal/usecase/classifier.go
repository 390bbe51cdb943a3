package usecase

import (
	"context"
	"strings"
	"sync"

	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/infra/metrics"
)

// roleRule maps title keywords to a category. Rules are evaluated in order;
// the first hit wins, so seniority markers are checked before functions
// ("VP of Engineering" is Executive, not Engineering).
type roleRule struct {
	category model.RoleCategory
	keywords []string
}

var roleRules = []roleRule{
	{model.RoleExecutive, []string{"ceo", "cfo", "coo", "cto", "chief", "founder", "president", "managing director", "vp", "vice president"}},
	{model.RoleInvestment, []string{"investment bank", "m&a", "mergers", "equity research", "capital markets"}},
	{model.RoleConsulting, []string{"strategy consult", "management consult", "consultant"}},
	{model.RoleCrypto, []string{"crypto", "web3", "blockchain", "defi"}},
	{model.RoleEngineering, []string{"engineer", "developer", "software", "devops", "sre", "data scientist", "architect"}},
	{model.RoleFinance, []string{"finance", "financial", "accountant", "accounting", "controller", "treasury", "auditor"}},
	{model.RoleSales, []string{"sales", "account executive", "business development", "account manager"}},
	{model.RoleMarketing, []string{"marketing", "growth", "brand", "content", "seo"}},
	{model.RoleHR, []string{"hr", "human resources", "people", "talent", "recruit"}},
	{model.RoleOperations, []string{"operations", "supply chain", "logistics", "procurement", "project manager", "program manager"}},
}

// RoleClassifier buckets job titles into the fixed role enumeration: ordered
// keyword rules first, the language model for the remainder. The cache is
// per-run so one run classifies the same normalized title exactly once.
type RoleClassifier struct {
	llm adapter.LanguageModel

	mu    sync.Mutex
	cache map[string]model.RoleCategory
}

func NewRoleClassifier(llm adapter.LanguageModel) *RoleClassifier {
	return &RoleClassifier{
		llm:   llm,
		cache: make(map[string]model.RoleCategory),
	}
}

var titlePunct = strings.NewReplacer(",", " ", "/", " ", "(", " ", ")", " ", "|", " ", "-", " ")

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(titlePunct.Replace(strings.ToLower(title))), " ")
}

// keywordMatch matches a keyword against the normalized title at word
// boundaries. Keywords of four or more characters may be token prefixes
// ("engineer" covers "engineering", "recruit" covers "recruiter"); shorter
// ones must be whole tokens so "hr" does not fire inside "threat".
func keywordMatch(norm, kw string) bool {
	padded := " " + norm + " "
	if len(kw) >= 4 || strings.Contains(kw, " ") {
		return strings.Contains(padded, " "+kw)
	}
	return strings.Contains(padded, " "+kw+" ")
}

// Classify never fails: any model error or out-of-enumeration reply is
// coerced to the Other category.
func (c *RoleClassifier) Classify(ctx context.Context, title string) model.RoleCategory {
	norm := normalizeTitle(title)
	if norm == "" {
		metrics.Classified("coerced")
		return model.RoleOther
	}

	c.mu.Lock()
	if cat, ok := c.cache[norm]; ok {
		c.mu.Unlock()
		metrics.Classified("cache")
		return cat
	}
	c.mu.Unlock()

	cat, source := c.classify(ctx, norm)
	metrics.Classified(source)

	c.mu.Lock()
	c.cache[norm] = cat
	c.mu.Unlock()
	return cat
}

func (c *RoleClassifier) classify(ctx context.Context, norm string) (model.RoleCategory, string) {
	for _, rule := range roleRules {
		for _, kw := range rule.keywords {
			if keywordMatch(norm, kw) {
				return rule.category, "rule"
			}
		}
	}

	if c.llm == nil {
		return model.RoleOther, "coerced"
	}
	allowed := make([]string, 0, len(model.RoleCategories()))
	for _, cat := range model.RoleCategories() {
		allowed = append(allowed, string(cat))
	}
	reply, err := c.llm.Classify(ctx, norm, allowed)
	if err != nil {
		return model.RoleOther, "coerced"
	}
	if cat := model.RoleCategory(reply); cat.Valid() {
		return cat, "llm"
	}
	return model.RoleOther, "coerced"
}
