package authapi

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Variants(t *testing.T) {
	t.Setenv("CADASTRO_VARIANT", "")
	cfg := LoadConfigFromEnv()
	if cfg.Variant != VariantAdvanced || !cfg.StrictUsername || !cfg.RequireEmail || !cfg.ReadsRequireToken {
		t.Fatalf("unexpected advanced defaults: %+v", cfg)
	}

	t.Setenv("CADASTRO_VARIANT", "BASIC")
	cfg = LoadConfigFromEnv()
	if cfg.Variant != VariantBasic || cfg.StrictUsername || cfg.RequireEmail || cfg.ReadsRequireToken {
		t.Fatalf("unexpected basic defaults: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("CADASTRO_VARIANT", "basic")
	t.Setenv("CADASTRO_READS_REQUIRE_TOKEN", "true")
	t.Setenv("CADASTRO_MAX_BODY_BYTES", "2048")
	t.Setenv("CADASTRO_STREAM_ORIGINS", "localhost:*, example.com ,")
	t.Setenv("CADASTRO_STREAM_PING", "bogus")

	cfg := LoadConfigFromEnv()
	if !cfg.ReadsRequireToken {
		t.Fatalf("expected reads to require a token")
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Fatalf("MaxBodyBytes=%d", cfg.MaxBodyBytes)
	}
	if len(cfg.StreamOrigins) != 2 || cfg.StreamOrigins[1] != "example.com" {
		t.Fatalf("StreamOrigins=%v", cfg.StreamOrigins)
	}
	if cfg.StreamPing != 25*time.Second {
		t.Fatalf("invalid duration must keep the default, got %v", cfg.StreamPing)
	}
}
