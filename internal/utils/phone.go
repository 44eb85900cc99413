package utils

import (
	"regexp"
	"strings"
)

// Algerian mobile numbers: 05/06/07 + 8 digits, or +213 5/6/7 + 8 digits.
var algerianMobileRegex = regexp.MustCompile(`^(0[5-7]\d{8}|\+213[5-7]\d{8})$`)

// NormalizePhone drops the spaces and hyphens customers type between digit groups.
func NormalizePhone(phone string) string {
	cleaned := whitespaceRegex.ReplaceAllString(phone, "")
	return strings.ReplaceAll(cleaned, "-", "")
}

func IsValidAlgerianPhone(phone string) bool {
	return algerianMobileRegex.MatchString(NormalizePhone(phone))
}
