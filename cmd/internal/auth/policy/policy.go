// Package policy holds cadastro's authorization rules.
//
// Any authenticated principal may read any profile. Mutations (update, delete)
// are restricted to the account owner. A missing target is reported before a
// forbidden one, so the store applies these rules as identity.Guard values.
package policy

import (
	"errors"

	"cadastro/cmd/identity"
)

// ErrForbidden is returned when a principal may not act on a target.
var ErrForbidden = errors.New("forbidden")

// Principal is the authenticated caller.
type Principal struct {
	Username string
	// UserID is zero when the caller authenticated with a token whose subject
	// was not resolved to a record.
	UserID int64
}

// Authorize reports whether p may mutate target.
func Authorize(p Principal, target identity.User) error {
	if p.Username == "" || target.Username != p.Username {
		return ErrForbidden
	}
	return nil
}

// OwnerOnly returns a guard enforcing Authorize inside the store's critical section.
func OwnerOnly(p Principal) identity.Guard {
	return func(target identity.User) error {
		return Authorize(p, target)
	}
}

// IsForbidden reports whether err is (or wraps) ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
