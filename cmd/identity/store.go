package identity

import (
	"context"
	"time"
)

// User is cadastro's canonical account record.
// PasswordHash is opaque hasher output and must never leave the service boundary.
type User struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string

	FullName *string
	Age      *int

	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// CreateUserInput describes a registration that already passed schema validation.
// The password is hashed by the caller; the store never sees plaintext.
type CreateUserInput struct {
	Username     string
	Email        *string
	PasswordHash string
	FullName     *string
	Age          *int
	Now          time.Time
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Email    *string
	FullName *string
	Age      *int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Email == nil && p.FullName == nil && p.Age == nil
}

// Guard authorizes a mutation against the current state of the target record.
// It runs inside the store's critical section, after the target was found.
type Guard func(target User) error

// Stats is an aggregate snapshot of the registry.
type Stats struct {
	TotalUsers    int
	UsersLoggedIn int
}

// Policy controls registry-level uniqueness rules.
type Policy struct {
	// UniqueEmail enforces email uniqueness among live records.
	UniqueEmail bool
}

// Store is the identity persistence boundary.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	FindByUsername(ctx context.Context, username string) (User, bool)
	ListUsers(ctx context.Context, offset, limit int) ([]User, error)
	UpdateUser(ctx context.Context, id int64, guard Guard, patch Patch) (User, error)
	DeleteUser(ctx context.Context, id int64, guard Guard) error
	MarkLogin(ctx context.Context, id int64, now time.Time) (User, error)
	Stats(ctx context.Context) Stats
}
