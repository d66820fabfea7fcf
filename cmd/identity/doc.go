// Package identity implements cadastro's user registry.
//
// It owns the authoritative in-memory record of users, keyed by a sequential
// numeric id, plus the username/email uniqueness indices that back registration
// and login. State is volatile and lives for the process lifetime.
package identity
