package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonWordRegex    = regexp.MustCompile(`[^\w-]+`)
	multiDashRegex  = regexp.MustCompile(`--+`)
)

// Slugify derives the URL identifier stored on categories and products.
// Non-ASCII letters are dropped rather than transliterated.
func Slugify(input string) string {
	slug := strings.ToLower(input)

	// Trim first so surrounding blanks do not turn into dashes
	slug = strings.TrimSpace(slug)

	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	slug = nonWordRegex.ReplaceAllString(slug, "")
	slug = multiDashRegex.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
