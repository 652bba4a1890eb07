package drops

import "strings"

// CategoryRule maps a channel label keyword to a region category.
type CategoryRule struct {
	Keyword  string
	Category string
}

// the first matching keyword wins, keep more specific keywords above
// broader ones
var categoryRules = []CategoryRule{
	{Keyword: "중천", Category: "중천"},
	{Keyword: "마계", Category: "마계"},
	{Keyword: "백해", Category: "백해"},
	{Keyword: "천계", Category: "천계"},
	{Keyword: "아라드", Category: "아라드"},
	{Keyword: "데 로스", Category: "데 로스 제국"},
	{Keyword: "베히모스", Category: "베히모스"},
	{Keyword: "이튼", Category: "이튼"},
}

// Classify returns the category of the first keyword contained in channel,
// or Uncategorized.
func Classify(channel string) string {
	return classifyWith(categoryRules, channel)
}

func classifyWith(rules []CategoryRule, channel string) string {
	for _, rule := range rules {
		if strings.Contains(channel, rule.Keyword) {
			return rule.Category
		}
	}
	return Uncategorized
}

// CategoryRules returns a copy of the keyword table in match order.
func CategoryRules() []CategoryRule {
	out := make([]CategoryRule, len(categoryRules))
	copy(out, categoryRules)
	return out
}
