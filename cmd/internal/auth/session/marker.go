package session

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// MarkerPrefix tags degraded-mode tokens.
const MarkerPrefix = "fallback_token_"

// MarkerToken returns the degraded-mode token for username.
func MarkerToken(username string) string {
	return MarkerPrefix + username
}

// MarkerStrategy accepts "fallback_token_<username>" while the username exists.
// It carries no expiry and no integrity protection.
type MarkerStrategy struct {
	lookup SubjectLookup
}

// NewMarkerStrategy builds a MarkerStrategy backed by lookup.
func NewMarkerStrategy(lookup SubjectLookup) *MarkerStrategy {
	return &MarkerStrategy{lookup: lookup}
}

// Name implements Strategy.
func (m *MarkerStrategy) Name() string { return StrategyMarker }

// Verify implements Strategy.
func (m *MarkerStrategy) Verify(ctx context.Context, token string, _ time.Time) (Claims, error) {
	if m == nil || m.lookup == nil {
		return Claims{}, ErrInvalidToken
	}

	username, ok := strings.CutPrefix(token, MarkerPrefix)
	if !ok || username == "" || strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return Claims{}, ErrInvalidToken
	}
	if !m.lookup.SubjectExists(ctx, username) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: username, Strategy: StrategyMarker}, nil
}

var _ Strategy = (*MarkerStrategy)(nil)
