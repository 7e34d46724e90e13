package utils

import (
	"regexp"
	"unicode"
)

var phoneSeparators = regexp.MustCompile(`[\s\-()]`)

// CleanPhone strips spaces, dashes and parentheses. The result is what gets stored.
func CleanPhone(phone string) string {
	return phoneSeparators.ReplaceAllString(phone, "")
}

func PhoneDigits(phone string) int {
	n := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
