package utils

import (
	"strconv"
	"strings"
)

// IsNumeric reports whether the value parses as an integer or float
// literal. Numeric property values never name another definition.
func IsNumeric(v string) bool {
	if v == "" {
		return false
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return true
	}
	return false
}

// LooksLikeIdentifier reports whether a property value can plausibly name a
// definition. Empty strings, numeric literals and multi-token values (lists,
// vectors like "12,10", sentences) are rejected.
func LooksLikeIdentifier(v string) bool {
	if v == "" || IsNumeric(v) {
		return false
	}
	if strings.ContainsAny(v, " ,;\t\n") {
		return false
	}
	return true
}

// NormalizeValue prepares an operation value for equality comparison.
// Absent values compare as the empty string. With fold enabled the
// comparison is whitespace-trimmed and case-insensitive; the default is
// an exact string match.
func NormalizeValue(v string, fold bool) string {
	if !fold {
		return v
	}
	return strings.ToLower(strings.TrimSpace(v))
}
