package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// Whole seconds: JWT NumericDate truncates.
var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers map[string]bool

func (f fakeUsers) SubjectExists(_ context.Context, u string) bool { return f[u] }

type failingSigner struct{}

func (failingSigner) Sign(string, time.Duration, time.Time) (string, time.Time, error) {
	return "", time.Time{}, errors.New("boom")
}

func newService(t *testing.T, cfg Config, lookup SubjectLookup, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(cfg, testKey, lookup, opts...)
	require.NoError(t, err)
	return svc
}

func TestIssueAndValidate(t *testing.T) {
	svc := newService(t, DefaultConfig(), nil)

	iss, err := svc.Issue("alice", 0, t0)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, iss.TokenType)
	assert.False(t, iss.Degraded)
	assert.Equal(t, int64(15*60), iss.ExpiresIn)
	assert.True(t, iss.ExpiresAt.Equal(t0.Add(15*time.Minute)))
	assert.Equal(t, 2, strings.Count(iss.Token, "."))

	c, err := svc.Validate(context.Background(), iss.Token, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
	assert.Equal(t, StrategyJWT, c.Strategy)
	assert.NotEmpty(t, c.TokenID)
	require.NotNil(t, c.ExpiresAt)
	assert.True(t, c.ExpiresAt.Equal(iss.ExpiresAt))
}

func TestIssueLogin_UsesLoginTTL(t *testing.T) {
	svc := newService(t, DefaultConfig(), nil)

	iss, err := svc.IssueLogin("alice", t0)
	require.NoError(t, err)
	assert.Equal(t, int64(30*60), iss.ExpiresIn)
	assert.Equal(t, 30*time.Minute, svc.Config().LoginTTL)
}

func TestIssue_SubSecondClock(t *testing.T) {
	svc := newService(t, DefaultConfig(), nil)
	now := t0.Add(600 * time.Millisecond)

	iss, err := svc.IssueLogin("alice", now)
	require.NoError(t, err)
	assert.Equal(t, int64(30*60), iss.ExpiresIn)
	assert.True(t, iss.ExpiresAt.Equal(t0.Add(30*time.Minute)), "exp=%v", iss.ExpiresAt)

	_, err = svc.Validate(context.Background(), iss.Token, now)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), iss.Token, t0.Add(30*time.Minute+time.Second))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expiry(t *testing.T) {
	svc := newService(t, DefaultConfig(), nil)

	iss, err := svc.Issue("alice", time.Minute, t0)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), iss.Token, t0.Add(59*time.Second))
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), iss.Token, t0.Add(time.Minute+time.Second))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_TokensSurviveLogout(t *testing.T) {
	// No revocation: two tokens for the same subject stay valid side by side.
	svc := newService(t, DefaultConfig(), nil)

	a, err := svc.Issue("alice", 0, t0)
	require.NoError(t, err)
	b, err := svc.Issue("alice", 0, t0.Add(time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	for _, tok := range []string{a.Token, b.Token} {
		_, err := svc.Validate(context.Background(), tok, t0.Add(2*time.Second))
		require.NoError(t, err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	svc := newService(t, DefaultConfig(), nil)
	iss, err := svc.Issue("alice", 0, t0)
	require.NoError(t, err)

	other, err := NewService(Config{Issuer: "cadastro", DefaultTTL: time.Minute, LoginTTL: time.Minute},
		[]byte("another-secret-another-secret-xx"), nil)
	require.NoError(t, err)
	foreign, err := other.Issue("alice", 0, t0)
	require.NoError(t, err)

	otherIssuer, err := NewService(Config{Issuer: "elsewhere", DefaultTTL: time.Minute, LoginTTL: time.Minute}, testKey, nil)
	require.NoError(t, err)
	wrongIss, err := otherIssuer.Issue("alice", 0, t0)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"tampered":       iss.Token[:len(iss.Token)-2] + "xx",
		"foreign secret": foreign.Token,
		"wrong issuer":   wrongIss.Token,
		"marker off":     MarkerToken("alice"),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tok, t0.Add(time.Second))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssue_SigningFailure(t *testing.T) {
	t.Run("fallback off", func(t *testing.T) {
		svc := newService(t, DefaultConfig(), nil, WithSigner(failingSigner{}))

		_, err := svc.Issue("alice", 0, t0)
		assert.ErrorIs(t, err, ErrSigning)
	})

	t.Run("fallback on", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FallbackEnabled = true

		var degraded bool
		svc := newService(t, cfg, fakeUsers{"alice": true},
			WithSigner(failingSigner{}),
			WithIssueHook(func(_ string, d bool) { degraded = d }),
		)

		iss, err := svc.Issue("alice", 0, t0)
		require.NoError(t, err)
		assert.True(t, iss.Degraded)
		assert.True(t, degraded)
		assert.Equal(t, "fallback_token_alice", iss.Token)
		assert.Zero(t, iss.ExpiresIn)
	})
}

func TestValidate_MarkerStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackEnabled = true
	users := fakeUsers{"alice": true}

	var seen []string
	svc := newService(t, cfg, users, WithValidateHook(func(s string, ok bool) {
		if ok {
			seen = append(seen, s)
		}
	}))

	c, err := svc.Validate(context.Background(), "fallback_token_alice", t0)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
	assert.Equal(t, StrategyMarker, c.Strategy)
	assert.Nil(t, c.ExpiresAt)

	// Marker tokens never expire while the user exists.
	_, err = svc.Validate(context.Background(), "fallback_token_alice", t0.Add(24*365*time.Hour))
	require.NoError(t, err)

	delete(users, "alice")
	_, err = svc.Validate(context.Background(), "fallback_token_alice", t0)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate(context.Background(), "fallback_token_", t0)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Real JWTs still go through the primary strategy first.
	iss, err := svc.Issue("bob", 0, t0)
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), iss.Token, t0)
	require.NoError(t, err)

	assert.Equal(t, []string{StrategyMarker, StrategyMarker, StrategyJWT}, seen)
}

func TestNewService_Config(t *testing.T) {
	_, err := NewService(DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrConfig)

	cfg := DefaultConfig()
	cfg.FallbackEnabled = true
	_, err = NewService(cfg, testKey, nil)
	assert.ErrorIs(t, err, ErrConfig)

	cfg = DefaultConfig()
	cfg.DefaultTTL = 0
	_, err = NewService(cfg, testKey, nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestIssue_EmptySubject(t *testing.T) {
	svc := newService(t, DefaultConfig(), nil)
	_, err := svc.Issue("  ", 0, t0)
	assert.Error(t, err)
}
