package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines all runtime configuration for the token service.
type Config struct {
	// Issuer is the value set in the "iss" claim and required on verification.
	Issuer string

	// DefaultTTL applies when Issue is called without a positive ttl.
	DefaultTTL time.Duration

	// LoginTTL is the lifetime of tokens handed out by the login flow.
	LoginTTL time.Duration

	// ClockSkew is the leeway applied to exp/nbf checks. Zero means tokens
	// expire exactly at issuance + ttl.
	ClockSkew time.Duration

	// FallbackEnabled turns on the degraded marker scheme, both for issuing
	// (when signing fails) and for validation.
	FallbackEnabled bool
}

// DefaultConfig returns the service defaults: 15 minute tokens, 30 minute login
// tokens, no skew, degraded mode off.
func DefaultConfig() Config {
	return Config{
		Issuer:     "cadastro",
		DefaultTTL: 15 * time.Minute,
		LoginTTL:   30 * time.Minute,
	}
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - CADASTRO_AUTH_ISSUER
//   - CADASTRO_AUTH_TOKEN_TTL
//   - CADASTRO_AUTH_LOGIN_TTL
//   - CADASTRO_AUTH_CLOCK_SKEW
//   - CADASTRO_TOKEN_FALLBACK (true/false)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("CADASTRO_AUTH_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	var err error
	if cfg.DefaultTTL, err = positiveDurationEnv("CADASTRO_AUTH_TOKEN_TTL", cfg.DefaultTTL); err != nil {
		return Config{}, err
	}
	if cfg.LoginTTL, err = positiveDurationEnv("CADASTRO_AUTH_LOGIN_TTL", cfg.LoginTTL); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(os.Getenv("CADASTRO_AUTH_CLOCK_SKEW")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	if v := strings.TrimSpace(os.Getenv("CADASTRO_TOKEN_FALLBACK")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.FallbackEnabled = b
	}

	return cfg, nil
}

func positiveDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, ErrConfig
	}
	return d, nil
}
