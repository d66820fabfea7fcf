package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cadastro/cmd/identity/ids"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager signs and verifies HS256 JWTs. It is both a Signer and the primary Strategy.
type JWTManager struct {
	issuer    string
	key       []byte
	clockSkew time.Duration
}

// NewJWTManager builds a JWTManager. The key must be non-empty.
func NewJWTManager(cfg Config, key []byte) (*JWTManager, error) {
	if len(key) == 0 {
		return nil, ErrConfig
	}
	return &JWTManager{
		issuer:    cfg.Issuer,
		key:       append([]byte(nil), key...),
		clockSkew: cfg.ClockSkew,
	}, nil
}

// Name implements Strategy.
func (m *JWTManager) Name() string { return StrategyJWT }

// Sign implements Signer.
func (m *JWTManager) Sign(subject string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("jwt: empty subject")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("jwt: non-positive ttl")
	}

	// NumericDate carries whole seconds; align now so exp is exactly now+ttl.
	now = now.Truncate(time.Second)
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        ids.Make(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify implements Strategy.
func (m *JWTManager) Verify(_ context.Context, token string, now time.Time) (Claims, error) {
	// Build a fresh parser per call so the clock is the caller's, not wall time.
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var rc jwt.RegisteredClaims
	parsed, err := p.ParseWithClaims(token, &rc, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if rc.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	exp := rc.ExpiresAt.Time
	out := Claims{
		Subject:   rc.Subject,
		ExpiresAt: &exp,
		TokenID:   rc.ID,
		Strategy:  StrategyJWT,
	}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	return out, nil
}

var (
	_ Signer   = (*JWTManager)(nil)
	_ Strategy = (*JWTManager)(nil)
)
