package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// SecretEnvKey is the env var name for the token signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "CADASTRO_TOKEN_SECRET"

	// MinSecretBytes is the minimum secret size recommended for HMAC-SHA256.
	MinSecretBytes = 32
)

// Secret is signing key material plus where it came from.
type Secret struct {
	Key       []byte
	Ephemeral bool
}

// Fingerprint returns the first 8 hex chars of SHA-256(key), safe to log.
func (s Secret) Fingerprint() string {
	sum := sha256.Sum256(s.Key)
	return hex.EncodeToString(sum[:4])
}

// SecretFromEnv returns the configured secret bytes (trimmed), enforcing a minimum byte length.
// If the env var is missing/blank -> ErrSecretMissing.
// If too short -> ErrSecretTooShort.
func SecretFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if raw == "" {
		return nil, ErrSecretMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}

// NewRandomSecret returns n bytes from crypto/rand.
func NewRandomSecret(n int) ([]byte, error) {
	if n < MinSecretBytes {
		n = MinSecretBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("token secret: %w", err)
	}
	return b, nil
}

// LoadSecret resolves the signing secret.
//
// Behavior:
//   - A configured secret must be at least MinSecretBytes long.
//   - Without a configured secret, require=true fails with ErrSecretMissing and
//     require=false generates an ephemeral random secret.
func LoadSecret(require bool) (Secret, error) {
	key, err := SecretFromEnv(MinSecretBytes)
	switch {
	case err == nil:
		return Secret{Key: key}, nil
	case errors.Is(err, ErrSecretMissing) && !require:
		key, err = NewRandomSecret(MinSecretBytes)
		if err != nil {
			return Secret{}, err
		}
		return Secret{Key: key, Ephemeral: true}, nil
	default:
		return Secret{}, err
	}
}
