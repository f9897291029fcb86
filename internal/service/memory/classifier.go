package memory

import (
	"strings"

	"github.com/sandevgo/selfbot/internal/core"
)

// categoryRules are checked in order; the first keyword hit wins. The
// fallback category is FACT.
var categoryRules = []struct {
	category core.Category
	keywords []string
}{
	{core.CategoryPreference, []string{"like", "love", "hate", "prefer"}},
	{core.CategorySkill, []string{"can", "know how"}},
	{core.CategoryBelief, []string{"believe", "think that"}},
	{core.CategoryIdeology, []string{"always", "never"}},
}

// Classify assigns a category to a normalized fact. Pure function: a
// case-insensitive substring test against the ordered rule set.
func Classify(fact string) core.Category {
	lower := strings.ToLower(fact)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return core.CategoryFact
}
