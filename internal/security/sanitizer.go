package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxInputLength = 1000

// SanitizeString trims, removes null bytes and caps the length in runes
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if utf8.RuneCountInString(input) > maxInputLength {
		input = string([]rune(input)[:maxInputLength])
	}

	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeText is applied to free text that ends up in notifications or
// search filters: tags stripped, then trimmed and capped. The result is
// plain text, so entities escaped by the policy are decoded again.
func SanitizeText(input string) string {
	return SanitizeString(html.UnescapeString(SanitizeHTML(input)))
}
