package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

// Issued is the result of issuing a token.
type Issued struct {
	Token     string
	TokenType string
	// ExpiresAt is zero for degraded tokens.
	ExpiresAt time.Time
	// ExpiresIn is the lifetime in whole seconds (0 for degraded tokens).
	ExpiresIn int64
	// Degraded is true when the marker scheme was used because signing failed.
	Degraded bool
}

// IssueHook observes every issued token. degraded reports marker issuance.
type IssueHook func(subject string, degraded bool)

// ValidateHook observes every validation. strategy is empty on failure.
type ValidateHook func(strategy string, ok bool)

// Service issues and validates bearer tokens.
//
// It is safe for concurrent use: all fields are set at construction.
type Service struct {
	cfg        Config
	signer     Signer
	strategies []Strategy
	log        *slog.Logger

	onIssue    IssueHook
	onValidate ValidateHook
}

// Option customizes a Service.
type Option func(*Service)

// WithSigner overrides the signer (the JWT manager by default).
func WithSigner(s Signer) Option {
	return func(svc *Service) {
		if s != nil {
			svc.signer = s
		}
	}
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithIssueHook registers an observer for issued tokens.
func WithIssueHook(h IssueHook) Option {
	return func(svc *Service) { svc.onIssue = h }
}

// WithValidateHook registers an observer for validations.
func WithValidateHook(h ValidateHook) Option {
	return func(svc *Service) { svc.onValidate = h }
}

// NewService builds the token service.
//
// key is the HMAC secret for the JWT strategy. lookup backs the marker
// strategy and is only required when cfg.FallbackEnabled is true.
func NewService(cfg Config, key []byte, lookup SubjectLookup, opts ...Option) (*Service, error) {
	if cfg.DefaultTTL <= 0 || cfg.LoginTTL <= 0 || cfg.ClockSkew < 0 {
		return nil, ErrConfig
	}
	if cfg.FallbackEnabled && lookup == nil {
		return nil, fmt.Errorf("%w: fallback requires a subject lookup", ErrConfig)
	}

	jwtm, err := NewJWTManager(cfg, key)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:        cfg,
		signer:     jwtm,
		strategies: []Strategy{jwtm},
		log:        slog.Default(),
	}
	if cfg.FallbackEnabled {
		svc.strategies = append(svc.strategies, NewMarkerStrategy(lookup))
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Config returns the service configuration.
func (s *Service) Config() Config { return s.cfg }

// Issue creates a token for subject valid for ttl (DefaultTTL when ttl <= 0).
//
// If signing fails and the degraded mode is enabled, a marker token is
// returned with Degraded set. Otherwise the signing error is returned.
func (s *Service) Issue(subject string, ttl time.Duration, now time.Time) (Issued, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Issued{}, errors.New("session: empty subject")
	}
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	token, exp, err := s.signer.Sign(subject, ttl, now)
	if err != nil {
		if !s.cfg.FallbackEnabled {
			return Issued{}, fmt.Errorf("%w: %v", ErrSigning, err)
		}

		s.log.Warn("auth.token.degraded", "subject", subject, "err", err)
		s.issued(subject, true)
		return Issued{
			Token:     MarkerToken(subject),
			TokenType: TokenTypeBearer,
			Degraded:  true,
		}, nil
	}

	s.issued(subject, false)
	return Issued{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: exp,
		ExpiresIn: int64(ttl / time.Second),
	}, nil
}

// IssueLogin issues a token with the login lifetime.
func (s *Service) IssueLogin(subject string, now time.Time) (Issued, error) {
	return s.Issue(subject, s.cfg.LoginTTL, now)
}

// Validate returns the subject of token, trying each strategy in order.
// Any failure maps to ErrInvalidToken.
func (s *Service) Validate(ctx context.Context, token string, now time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.validated("", false)
		return Claims{}, ErrInvalidToken
	}

	for _, st := range s.strategies {
		c, err := st.Verify(ctx, token, now)
		if err == nil {
			s.validated(st.Name(), true)
			return c, nil
		}
	}

	s.validated("", false)
	return Claims{}, ErrInvalidToken
}

func (s *Service) issued(subject string, degraded bool) {
	if s.onIssue != nil {
		s.onIssue(subject, degraded)
	}
}

func (s *Service) validated(strategy string, ok bool) {
	if s.onValidate != nil {
		s.onValidate(strategy, ok)
	}
}
