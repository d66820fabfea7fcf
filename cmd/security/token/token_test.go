package token

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSecretFromEnv(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	if _, err := SecretFromEnv(MinSecretBytes); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}

	t.Setenv(SecretEnvKey, "short")
	if _, err := SecretFromEnv(MinSecretBytes); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}

	long := strings.Repeat("k", 40)
	t.Setenv(SecretEnvKey, "  "+long+"  ")
	b, err := SecretFromEnv(MinSecretBytes)
	if err != nil {
		t.Fatalf("SecretFromEnv: %v", err)
	}
	if string(b) != long {
		t.Fatalf("expected trimmed secret")
	}
}

func TestLoadSecret_Ephemeral(t *testing.T) {
	t.Setenv(SecretEnvKey, "")

	s, err := LoadSecret(false)
	if err != nil {
		t.Fatalf("LoadSecret: %v", err)
	}
	if !s.Ephemeral || len(s.Key) != MinSecretBytes {
		t.Fatalf("expected ephemeral %d-byte secret, got ephemeral=%v len=%d", MinSecretBytes, s.Ephemeral, len(s.Key))
	}

	other, err := LoadSecret(false)
	if err != nil {
		t.Fatalf("LoadSecret: %v", err)
	}
	if bytes.Equal(s.Key, other.Key) {
		t.Fatalf("expected distinct random secrets")
	}
}

func TestLoadSecret_Required(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	if _, err := LoadSecret(true); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}

	t.Setenv(SecretEnvKey, strings.Repeat("s", 32))
	s, err := LoadSecret(true)
	if err != nil {
		t.Fatalf("LoadSecret: %v", err)
	}
	if s.Ephemeral {
		t.Fatalf("configured secret must not be ephemeral")
	}
	if len(s.Fingerprint()) != 8 {
		t.Fatalf("unexpected fingerprint %q", s.Fingerprint())
	}
}
