package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mango/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "john.doe@example.com", sanitizer.NormalizeEmail("  John.Doe@Example.COM "))
	assert.Equal(t, "", sanitizer.NormalizeEmail("   "))
}

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"john@example.com": "j***@example.com",
		"ż@poczta.pl":      "ż***@poczta.pl",
		"not-an-email":     "***",
		"@example.com":     "***",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizer.MaskEmail(in), in)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ann Lee", sanitizer.DisplayName("  Ann \t\n  Lee\x00 "))
	assert.Equal(t, "Jane Smith Jr", sanitizer.DisplayName("Jane\tSmith\nJr"))
	assert.Equal(t, "Jane Smith", sanitizer.DisplayName("Jane\r\n\x1bSmith"))
	assert.Len(t, []rune(sanitizer.DisplayName(strings.Repeat("é", 150))), 100)

	// "e" followed by a combining acute accent composes to a single rune
	assert.Equal(t, "Ren\u00e9", sanitizer.DisplayName("Rene\u0301"))
}

func TestRemoveControlChars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab\tc\n", sanitizer.RemoveControlChars("a\x00b\tc\x7f\n"))
}

func TestApplyAndCompose(t *testing.T) {
	t.Parallel()

	upper := func(s string) string { return strings.ToUpper(s) }
	assert.Equal(t, "HI", sanitizer.Apply(" hi ", sanitizer.Trim, upper))
	assert.Equal(t, "ab", sanitizer.Apply("abc", sanitizer.MaxLength(2)))
	assert.Equal(t, 3, sanitizer.Apply(1, func(i int) int { return i + 2 }))
}
