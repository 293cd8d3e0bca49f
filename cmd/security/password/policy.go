package password

import (
	"unicode"
	"unicode/utf8"
)

// Validate checks password policy. It does not mutate input.
func (c Config) Validate(password string) error {
	// Count characters (runes), not bytes, to be user-friendly.
	n := utf8.RuneCountInString(password)

	if n < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if n > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}

	if c.Policy.RequireMixedClasses && !hasMixedClasses(password) {
		return ErrPasswordTooWeak
	}

	return nil
}

// hasMixedClasses reports whether pw contains an uppercase letter, a
// lowercase letter, and a digit or symbol. This is the registration rule;
// it is intentionally not a zxcvbn-style strength estimator.
func hasMixedClasses(pw string) bool {
	var upper, lower, digitOrSym bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			digitOrSym = true
		}
	}
	return upper && lower && digitOrSym
}
