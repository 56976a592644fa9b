package validator

import (
	"fmt"
	"strings"
	"unicode"
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "passw0rd": true,
	"12345678": true, "123456789": true, "1234567890": true, "qwerty123": true,
	"qwertyuiop": true, "iloveyou": true, "letmein1": true, "welcome1": true,
	"admin123": true, "abc12345": true, "11111111": true, "00000000": true,
}

// PasswordStrengthConfig describes the password policy.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // of lower, upper, digit, special
}

// DefaultPasswordStrength: 8-72 characters from at least 3 character classes.
// 72 is the bcrypt input limit.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      72,
		MinCharClasses: 3,
	}
}

func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < config.MinLength || len(value) > config.MaxLength {
				return false
			}
			return charClasses(value) >= config.MinCharClasses
		},
		Error: ValidationError{
			Field: field,
			Message: fmt.Sprintf("password must be %d-%d characters and mix at least %d of lowercase, uppercase, digits and symbols",
				config.MinLength, config.MaxLength, config.MinCharClasses),
			TranslationKey: "validation.password_strength",
			TranslationValues: map[string]any{
				"field":            field,
				"min_length":       config.MinLength,
				"max_length":       config.MaxLength,
				"min_char_classes": config.MinCharClasses,
			},
		},
	}
}

func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !commonPasswords[strings.ToLower(value)]
		},
		Error: ValidationError{
			Field:             field,
			Message:           "password is too common, please choose a different one",
			TranslationKey:    "validation.password_common",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func charClasses(s string) int {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	n := 0
	for _, ok := range []bool{lower, upper, digit, special} {
		if ok {
			n++
		}
	}
	return n
}
