package sanitizer

import "strings"

// NormalizeEmail trims, composes and lowercases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(NFC(strings.TrimSpace(email)))
}

// MaskEmail keeps the first character and the domain, e.g. "j***@example.com".
// Used when an address has to appear in logs.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	first := []rune(local)[0]
	return string(first) + "***@" + domain
}
