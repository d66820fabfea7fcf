package app

import (
	"errors"

	"cadastro/cmd/security/token"
)

// ValidateSecurityConfig enforces the startup security policy and resolves the
// token signing secret.
//
// Fail-fast: with CADASTRO_REQUIRE_TOKEN_SECRET=true a missing or short secret
// aborts startup instead of silently minting an ephemeral one.
func ValidateSecurityConfig(cfg Config) (token.Secret, error) {
	secret, err := token.LoadSecret(cfg.RequireTokenSecret)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrSecretMissing):
			return token.Secret{}, errors.New("security policy: CADASTRO_REQUIRE_TOKEN_SECRET=true but CADASTRO_TOKEN_SECRET is missing")
		case errors.Is(err, token.ErrSecretTooShort):
			return token.Secret{}, errors.New("security policy: CADASTRO_TOKEN_SECRET is too short (min 32 bytes)")
		default:
			return token.Secret{}, err
		}
	}
	return secret, nil
}
