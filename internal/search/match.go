package search

import (
	"strings"

	"github.com/tbourn/go-recipe-book/internal/domain"
)

// Matches reports whether an ingredient called name should be offered for
// query. The comparison is case-insensitive (Unicode folding) and
// whitespace-insensitive; it accepts when any space-separated token of the
// name, or the whole name, contains the query. A blank query matches all.
func Matches(name, query string) bool {
	q := normalizeWhitespace(domain.Fold(query))
	if q == "" {
		return true
	}
	n := normalizeWhitespace(domain.Fold(name))
	for _, tok := range strings.Fields(n) {
		if strings.Contains(tok, q) {
			return true
		}
	}
	return strings.Contains(n, q)
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
