package drops

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		channel  string
		expected string
	}{
		{channel: "중천 Ch.70", expected: "중천"},
		{channel: "마계 Ch.6", expected: "마계"},
		{channel: "백해 Ch.3", expected: "백해"},
		{channel: "천계 Ch.12", expected: "천계"},
		{channel: "데 로스 Ch.1", expected: "데 로스 제국"},
		{channel: "Ch.70", expected: Uncategorized},
		{channel: "", expected: Uncategorized},
		// contains two keywords, the one earlier in the table wins
		{channel: "마계 중천 Ch.1", expected: "중천"},
		{channel: "백해-마계 Ch.1", expected: "마계"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Classify(test.channel), test.channel)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := []CategoryRule{
		{Keyword: "Ch", Category: "generic"},
		{Keyword: "중천", Category: "중천"},
	}
	require.Equal(t, "generic", classifyWith(rules, "중천 Ch.70"))
	require.Equal(t, "중천", classifyWith(rules, "중천 70"))
	require.Equal(t, Uncategorized, classifyWith(nil, "중천 70"))
}

func TestCategoryRulesIsCopy(t *testing.T) {
	rules := CategoryRules()
	require.NotEmpty(t, rules)
	rules[0].Category = "changed"
	require.Equal(t, "중천", Classify("중천 Ch.70"))
}
