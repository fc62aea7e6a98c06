// Package utils holds small parsing helpers for request parameters.
package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by ParseID for non-numeric or non-positive ids.
var ErrInvalidID = errors.New("id must be a positive integer")

// AtoiDefault parses s, returning def when s is empty or not an integer.
func AtoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

// Limit parses a limit parameter. Missing or invalid values give def and
// the result is clamped to [1, max].
func Limit(s string, def, max int) int {
	n := AtoiDefault(s, def)
	if n < 1 {
		n = 1
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// ParseID parses a store-assigned recipe id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
