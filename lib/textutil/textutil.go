package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Fold lowercases a label and strips all whitespace from it.
func Fold(label string) string {
	label = strings.ToLower(label)
	return whitespaceRegex.ReplaceAllString(label, "")
}

// Digits returns only the decimal digits of a label, in order.
func Digits(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, label)
}
