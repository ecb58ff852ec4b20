package utils

import (
	"regexp"
	"strings"
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// NormalizePhoneNumber strips spaces, dashes and brackets, keeping a leading '+'.
func NormalizePhoneNumber(phoneNumber string) string {
	phoneNumber = strings.TrimSpace(phoneNumber)
	var b strings.Builder
	for i, r := range phoneNumber {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsE164 reports whether the number is in international E.164 form.
func IsE164(phoneNumber string) bool {
	return e164.MatchString(phoneNumber)
}
