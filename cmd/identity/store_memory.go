package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-memory identity registry.
//
// Concurrency guarantees:
//   - Uniqueness checks, id allocation and insertion run in one critical section,
//     so concurrent registrations of the same username cannot both succeed.
//   - Ids are allocated only after every check passed; failed attempts never
//     consume an id, and ids of deleted users are never reused.
type MemoryStore struct {
	policy Policy

	mu         sync.RWMutex
	nextID     int64
	users      map[int64]*User
	order      []int64
	byUsername map[string]int64
	byEmail    map[string]int64
}

// NewMemoryStore constructs an empty registry whose first id is 1.
func NewMemoryStore(policy Policy) *MemoryStore {
	s := &MemoryStore{policy: policy}
	s.reset()
	return s
}

// Policy returns the uniqueness policy the store enforces.
func (s *MemoryStore) Policy() Policy { return s.policy }

// Reset drops every record and restarts id allocation at 1.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *MemoryStore) reset() {
	s.nextID = 1
	s.users = make(map[int64]*User)
	s.order = make([]int64, 0, 64)
	s.byUsername = make(map[string]int64)
	s.byEmail = make(map[string]int64)
}

// CreateUser registers a new user.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	username := NormalizeUsername(in.Username)
	if username == "" {
		return User{}, invalid(op, "username is required")
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return User{}, invalid(op, "password hash is required")
	}
	email := normalizeEmailPtr(in.Email)

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[username]; taken {
		return User{}, ConflictError{Op: op, Field: FieldUsername}
	}
	if email != nil && s.policy.UniqueEmail {
		if _, taken := s.byEmail[*email]; taken {
			return User{}, ConflictError{Op: op, Field: FieldEmail}
		}
	}

	id := s.nextID
	s.nextID++

	u := &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: in.PasswordHash,
		FullName:     cloneString(in.FullName),
		Age:          cloneInt(in.Age),
		CreatedAt:    now,
	}
	s.users[id] = u
	s.order = append(s.order, id)
	s.byUsername[username] = id
	if email != nil {
		s.indexEmail(*email, id)
	}

	return u.clone(), nil
}

// GetUserByID returns the user with the given id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetUserByID", ID: id}
	}
	return u.clone(), nil
}

// FindByUsername looks a live user up through the username index.
func (s *MemoryStore) FindByUsername(_ context.Context, username string) (User, bool) {
	username = NormalizeUsername(username)
	if username == "" {
		return User{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return User{}, false
	}
	return s.users[id].clone(), true
}

// ListUsers returns up to limit users in insertion order, skipping offset records.
func (s *MemoryStore) ListUsers(ctx context.Context, offset, limit int) ([]User, error) {
	const op = "identity.ListUsers"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, invalid(op, "offset must be >= 0")
	}
	if limit <= 0 {
		return nil, invalid(op, "limit must be > 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.order) {
		return []User{}, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}

	out := make([]User, 0, end-offset)
	for _, id := range s.order[offset:end] {
		out = append(out, s.users[id].clone())
	}
	return out, nil
}

// UpdateUser applies patch to the user with the given id.
//
// Precedence: a missing target yields NotFound before guard runs, so callers
// never learn ownership of ids that do not exist.
func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, guard Guard, patch Patch) (User, error) {
	const op = "identity.UpdateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := normalizeEmailPtr(patch.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: op, ID: id}
	}
	if guard != nil {
		if err := guard(u.clone()); err != nil {
			return User{}, err
		}
	}

	if email != nil && s.policy.UniqueEmail {
		if owner, taken := s.byEmail[*email]; taken && owner != id {
			return User{}, ConflictError{Op: op, Field: FieldEmail}
		}
	}

	if email != nil {
		if u.Email != nil {
			s.unindexEmail(*u.Email, id)
		}
		u.Email = email
		s.indexEmail(*email, id)
	}
	if patch.FullName != nil {
		u.FullName = cloneString(patch.FullName)
	}
	if patch.Age != nil {
		u.Age = cloneInt(patch.Age)
	}

	return u.clone(), nil
}

// DeleteUser hard-removes the user; its username and email become available again.
func (s *MemoryStore) DeleteUser(ctx context.Context, id int64, guard Guard) error {
	const op = "identity.DeleteUser"

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return NotFoundError{Op: op, ID: id}
	}
	if guard != nil {
		if err := guard(u.clone()); err != nil {
			return err
		}
	}

	delete(s.users, id)
	delete(s.byUsername, u.Username)
	if u.Email != nil {
		s.unindexEmail(*u.Email, id)
	}
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// MarkLogin records a successful authentication.
func (s *MemoryStore) MarkLogin(ctx context.Context, id int64, now time.Time) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.MarkLogin", ID: id}
	}
	at := now
	u.LastLoginAt = &at
	return u.clone(), nil
}

// Stats returns aggregate counts over live records.
func (s *MemoryStore) Stats(_ context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{TotalUsers: len(s.users)}
	for _, u := range s.users {
		if u.LastLoginAt != nil {
			st.UsersLoggedIn++
		}
	}
	return st
}

// Count returns the number of live users.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// indexEmail keeps the first live owner of an email. Without the uniqueness
// policy several users may share one address; the index then only serves
// bookkeeping and is never used for lookups.
func (s *MemoryStore) indexEmail(email string, id int64) {
	if _, ok := s.byEmail[email]; !ok {
		s.byEmail[email] = id
	}
}

func (s *MemoryStore) unindexEmail(email string, id int64) {
	if owner, ok := s.byEmail[email]; ok && owner == id {
		delete(s.byEmail, email)
	}
}

func (u *User) clone() User {
	cp := *u
	cp.Email = cloneString(u.Email)
	cp.FullName = cloneString(u.FullName)
	cp.Age = cloneInt(u.Age)
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		cp.LastLoginAt = &t
	}
	return cp
}

func normalizeEmailPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeEmail(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

var _ Store = (*MemoryStore)(nil)
