package utils

import "strings"

// NormalizeField folds a categorical profile value (religion, city, ...)
// to the form used for comparisons.
func NormalizeField(input string) string {
	return strings.ToLower(strings.Join(strings.Fields(input), " "))
}

// SameField reports whether two categorical values are equal ignoring case
// and surrounding or repeated whitespace. Empty values never match.
func SameField(a, b string) bool {
	na := NormalizeField(a)
	return na != "" && na == NormalizeField(b)
}
