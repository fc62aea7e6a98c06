package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s, trimmed. Folding is used
// for every case-insensitive comparison so that non-Latin names match too.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// FoldCase case-folds s without touching whitespace. Substring search on
// recipe names uses it so that spaces in the query are significant.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}
