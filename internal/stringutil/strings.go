// Package stringutil provides common string manipulation utilities.
package stringutil

import "strings"

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DigitsOnly returns s with every non-digit character removed.
//
// Example:
//
//	DigitsOnly("int. 4125/4126") returns "41254126"
//	DigitsOnly("N/A") returns ""
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContainsDigit reports whether s contains at least one decimal digit.
func ContainsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
