package policy

import (
	"context"
	"testing"
	"time"

	"cadastro/cmd/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	bob := identity.User{ID: 1, Username: "bob"}

	assert.NoError(t, Authorize(Principal{Username: "bob", UserID: 1}, bob))
	assert.ErrorIs(t, Authorize(Principal{Username: "alice", UserID: 2}, bob), ErrForbidden)
	assert.ErrorIs(t, Authorize(Principal{}, identity.User{}), ErrForbidden)
	// Usernames are case sensitive.
	assert.ErrorIs(t, Authorize(Principal{Username: "Bob"}, bob), ErrForbidden)
}

func TestOwnerOnly_WithStore(t *testing.T) {
	ctx := context.Background()
	s := identity.NewMemoryStore(identity.Policy{UniqueEmail: true})

	bob, err := s.CreateUser(ctx, identity.CreateUserInput{Username: "bob", PasswordHash: "h", Now: time.Now()})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, identity.CreateUserInput{Username: "alice", PasswordHash: "h", Now: time.Now()})
	require.NoError(t, err)

	age := 30
	alice := Principal{Username: "alice", UserID: 2}

	_, err = s.UpdateUser(ctx, bob.ID, OwnerOnly(alice), identity.Patch{Age: &age})
	assert.True(t, IsForbidden(err))
	assert.True(t, IsForbidden(s.DeleteUser(ctx, bob.ID, OwnerOnly(alice))))

	// NotFound wins over Forbidden.
	_, err = s.UpdateUser(ctx, 99, OwnerOnly(alice), identity.Patch{Age: &age})
	assert.True(t, identity.IsNotFound(err))
	assert.False(t, IsForbidden(err))

	owner := Principal{Username: "bob", UserID: bob.ID}
	require.NoError(t, s.DeleteUser(ctx, bob.ID, OwnerOnly(owner)))
	assert.True(t, identity.IsNotFound(s.DeleteUser(ctx, bob.ID, OwnerOnly(owner))))
}
