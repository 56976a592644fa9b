package sanitizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveControlChars drops non-printable runes. Whitespace controls such as
// tab and newline are kept for NormalizeWhitespace to fold.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NFC composes s to Unicode normalization form C, so visually equal names
// compare equal.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MaxLength truncates s to maxLen runes.
func MaxLength(maxLen int) func(string) string {
	return func(s string) string {
		runes := []rune(s)
		if len(runes) <= maxLen {
			return s
		}
		return string(runes[:maxLen])
	}
}

// DisplayName cleans a free-form person name.
var DisplayName = Compose(NFC, RemoveControlChars, NormalizeWhitespace, MaxLength(100))
