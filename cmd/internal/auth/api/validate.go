package authapi

import (
	"net/mail"
	"strings"
	"unicode"
)

// validEmail does a light shape check before the store sees the value. The
// unique index is the real gatekeeper.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// Reject the "Name <addr>" form; only the bare address is accepted.
	return addr.Address == email
}

// validPassword mirrors the stored policy so obviously bad input fails fast
// with a clear code instead of round-tripping through the hasher.
func validPassword(password string) bool {
	if len(password) < 8 || len(password) > 256 {
		return false
	}
	var upper, lower, other bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			other = true
		}
	}
	return upper && lower && other
}
