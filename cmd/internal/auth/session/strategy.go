package session

import (
	"context"
	"time"
)

// Strategy names reported in Claims and to validation hooks.
const (
	StrategyJWT    = "jwt"
	StrategyMarker = "marker"
)

// Claims is the identity envelope produced by a successful verification.
type Claims struct {
	Subject string
	// ExpiresAt is nil for tokens without expiry semantics (marker tokens).
	ExpiresAt *time.Time
	IssuedAt  time.Time
	TokenID   string
	Strategy  string
}

// Strategy is one way of verifying a bearer token.
// Implementations must not panic on arbitrary input.
type Strategy interface {
	Name() string
	Verify(ctx context.Context, token string, now time.Time) (Claims, error)
}

// Signer produces signed tokens for a subject.
type Signer interface {
	Sign(subject string, ttl time.Duration, now time.Time) (token string, exp time.Time, err error)
}

// SubjectLookup reports whether a username still exists in the registry.
type SubjectLookup interface {
	SubjectExists(ctx context.Context, username string) bool
}

// LookupFunc adapts a function to SubjectLookup.
type LookupFunc func(ctx context.Context, username string) bool

// SubjectExists calls f.
func (f LookupFunc) SubjectExists(ctx context.Context, username string) bool { return f(ctx, username) }
