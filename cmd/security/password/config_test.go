package password

import (
	"os"
	"testing"
)

var passwordEnv = []string{
	"CADASTRO_PASSWORD_ALGO",
	"CADASTRO_BCRYPT_COST",
	"CADASTRO_PASSWORD_MIN_LEN",
	"CADASTRO_PASSWORD_MAX_LEN",
	"CADASTRO_PASSWORD_REJECT_VERY_WEAK",
	"CADASTRO_ARGON2_MEMORY_KIB",
	"CADASTRO_ARGON2_ITERATIONS",
	"CADASTRO_ARGON2_PARALLELISM",
	"CADASTRO_ARGON2_SALT_LEN",
	"CADASTRO_ARGON2_KEY_LEN",
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range passwordEnv {
		_ = os.Unsetenv(k)
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	def := DefaultConfig()
	if cfg.Algorithm != AlgorithmBcrypt {
		t.Fatalf("algorithm mismatch: %q", cfg.Algorithm)
	}
	if cfg.Policy.MinLength != 6 || cfg.Policy.MaxLength != 72 {
		t.Fatalf("policy mismatch: %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != def.Params.MemoryKiB {
		t.Fatalf("memory mismatch")
	}
}

func TestFromEnv_Override(t *testing.T) {
	t.Setenv("CADASTRO_PASSWORD_ALGO", "ARGON2ID")
	t.Setenv("CADASTRO_PASSWORD_MIN_LEN", "10")
	t.Setenv("CADASTRO_PASSWORD_MAX_LEN", "200")
	t.Setenv("CADASTRO_PASSWORD_REJECT_VERY_WEAK", "true")
	t.Setenv("CADASTRO_ARGON2_MEMORY_KIB", "32768")
	t.Setenv("CADASTRO_ARGON2_ITERATIONS", "4")
	t.Setenv("CADASTRO_ARGON2_PARALLELISM", "2")
	t.Setenv("CADASTRO_ARGON2_SALT_LEN", "24")
	t.Setenv("CADASTRO_ARGON2_KEY_LEN", "32")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	if cfg.Algorithm != AlgorithmArgon2id {
		t.Fatalf("algorithm override failed: %q", cfg.Algorithm)
	}
	if cfg.Policy.MinLength != 10 || cfg.Policy.MaxLength != 200 || !cfg.Policy.RejectVeryWeak {
		t.Fatalf("policy override failed: %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != 32768 || cfg.Params.Iterations != 4 || cfg.Params.Parallelism != 2 {
		t.Fatalf("argon2 override failed: %+v", cfg.Params)
	}
	if cfg.Params.SaltLength != 24 || cfg.Params.KeyLength != 32 {
		t.Fatalf("len override failed: %+v", cfg.Params)
	}
}

func TestFromEnv_BcryptCost(t *testing.T) {
	t.Setenv("CADASTRO_BCRYPT_COST", "4")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.BcryptCost != 4 {
		t.Fatalf("bcrypt cost mismatch: %d", cfg.BcryptCost)
	}

	t.Setenv("CADASTRO_BCRYPT_COST", "99")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestFromEnv_UnknownAlgorithm(t *testing.T) {
	t.Setenv("CADASTRO_PASSWORD_ALGO", "sha1")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromEnv_InvalidMinMax(t *testing.T) {
	t.Setenv("CADASTRO_PASSWORD_MIN_LEN", "20")
	t.Setenv("CADASTRO_PASSWORD_MAX_LEN", "10")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}
