package keywords

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMax is the number of keywords used for a stock-media query.
	DefaultMax = 3
	// minRunes is the shortest token that can become a keyword.
	minRunes = 4
)

// Fallback is the query used when a script yields no keywords at all.
var Fallback = []string{"abstract", "background"}

var lower = cases.Lower(language.Und)

// Extract returns up to limit keywords ranked by frequency, then by length.
// Remaining ties keep first-appearance order, so the result is a pure
// function of the input. limit <= 0 selects DefaultMax.
func Extract(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMax
	}

	counts := make(map[string]int)
	var order []string
	for _, token := range Tokenize(text) {
		if IsStopWord(token) || utf8.RuneCountInString(token) < minRunes {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return utf8.RuneCountInString(b) - utf8.RuneCountInString(a)
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// ExtractOrFallback is Extract with the generic fallback pair substituted
// for an empty result.
func ExtractOrFallback(text string, limit int) []string {
	if kws := Extract(text, limit); len(kws) > 0 {
		return kws
	}
	return slices.Clone(Fallback)
}

// Tokenize lowercases text and splits it on every rune that is not a letter,
// digit, mark, or underscore.
func Tokenize(text string) []string {
	return strings.FieldsFunc(lower.String(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_')
	})
}
