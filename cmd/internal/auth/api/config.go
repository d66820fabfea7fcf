package authapi

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Variants select a bundle of validation and access defaults.
const (
	VariantAdvanced = "advanced"
	VariantBasic    = "basic"
)

// Config controls HTTP-level validation and access rules.
type Config struct {
	Variant string

	// StrictUsername requires at least 3 alphanumeric characters.
	StrictUsername bool
	// RequireEmail makes email mandatory on registration.
	RequireEmail bool
	// ReadsRequireToken protects GET /usuario/{id}, /usuarios and /stats.
	ReadsRequireToken bool

	MaxBodyBytes int64
	TrustProxy   bool

	// StreamOrigins are host patterns allowed to open /logs/stream cross-origin.
	StreamOrigins []string
	// StreamPing is the websocket heartbeat interval.
	StreamPing time.Duration
}

// ConfigForVariant returns the defaults of a variant. Unknown names fall back to advanced.
func ConfigForVariant(variant string) Config {
	cfg := Config{
		Variant:           VariantAdvanced,
		StrictUsername:    true,
		RequireEmail:      true,
		ReadsRequireToken: true,
		MaxBodyBytes:      1 << 20, // 1 MiB
		StreamPing:        25 * time.Second,
	}
	if strings.EqualFold(strings.TrimSpace(variant), VariantBasic) {
		cfg.Variant = VariantBasic
		cfg.StrictUsername = false
		cfg.RequireEmail = false
		cfg.ReadsRequireToken = false
	}
	return cfg
}

// LoadConfigFromEnv loads API config from environment variables with safe defaults.
//
// CADASTRO_VARIANT picks the baseline; each flag can then be overridden:
// CADASTRO_STRICT_USERNAME, CADASTRO_REQUIRE_EMAIL, CADASTRO_READS_REQUIRE_TOKEN,
// CADASTRO_MAX_BODY_BYTES, CADASTRO_TRUST_PROXY, CADASTRO_STREAM_ORIGINS (comma separated), CADASTRO_STREAM_PING.
func LoadConfigFromEnv() Config {
	cfg := ConfigForVariant(os.Getenv("CADASTRO_VARIANT"))

	cfg.StrictUsername = envBool("CADASTRO_STRICT_USERNAME", cfg.StrictUsername)
	cfg.RequireEmail = envBool("CADASTRO_REQUIRE_EMAIL", cfg.RequireEmail)
	cfg.ReadsRequireToken = envBool("CADASTRO_READS_REQUIRE_TOKEN", cfg.ReadsRequireToken)
	cfg.MaxBodyBytes = envInt64("CADASTRO_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.TrustProxy = envBool("CADASTRO_TRUST_PROXY", cfg.TrustProxy)
	cfg.StreamOrigins = envCSV("CADASTRO_STREAM_ORIGINS")
	cfg.StreamPing = envDuration("CADASTRO_STREAM_PING", cfg.StreamPing)

	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func envCSV(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
