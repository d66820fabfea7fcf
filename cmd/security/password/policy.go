package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validate checks p against the password. It does not mutate input.
// Length is counted in runes; the bcrypt byte limit is enforced by BcryptHasher.
func (p Policy) Validate(password string) error {
	n := utf8.RuneCountInString(password)

	if n < p.MinLength {
		return ErrPasswordTooShort
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		return ErrPasswordTooLong
	}
	if p.RejectVeryWeak && looksVeryWeak(password) {
		return ErrWeakPassword
	}
	return nil
}

// looksVeryWeak rejects a handful of trivially guessable shapes.
// It is not a strength estimator.
func looksVeryWeak(pw string) bool {
	s := strings.TrimSpace(pw)
	if s == "" {
		return true
	}

	if strings.Count(s, string([]rune(s)[0])) == utf8.RuneCountInString(s) {
		return true
	}

	onlyDigits := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) == -1
	if onlyDigits && utf8.RuneCountInString(s) < 12 {
		return true
	}

	switch strings.ToLower(s) {
	case "password", "password123", "123456", "123456789", "qwerty", "qwerty123", "senha", "senha123":
		return true
	}
	return false
}
