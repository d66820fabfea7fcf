package identity

import "strings"

// NormalizeUsername trims surrounding whitespace. Usernames stay case-sensitive:
// "Bob" and "bob" are distinct accounts.
func NormalizeUsername(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
