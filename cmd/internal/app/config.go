package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string

	LogLevel  string
	LogFormat string // json | pretty
	LogColor  bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	MetricsEnabled bool

	// ActivityStreamQueue is the per-subscriber buffer of the live activity feed.
	ActivityStreamQueue int

	// Security policy:
	// If true, CADASTRO_TOKEN_SECRET MUST be set (>= 32 bytes). Otherwise an
	// ephemeral secret is generated and tokens die with the process.
	RequireTokenSecret bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("CADASTRO_HTTP_ADDR", "0.0.0.0:8000"),

		LogLevel:  EnvString("CADASTRO_LOG_LEVEL", "info"),
		LogFormat: EnvString("CADASTRO_LOG_FORMAT", "json"),
		LogColor:  EnvBool("CADASTRO_LOG_COLOR", true),

		ReadHeaderTimeout: EnvDuration("CADASTRO_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CADASTRO_HTTP_READ_TIMEOUT", 15*time.Second),
		// Zero keeps long-lived websocket streams open; per-frame deadlines apply instead.
		WriteTimeout:    EnvDuration("CADASTRO_HTTP_WRITE_TIMEOUT", 0),
		IdleTimeout:     EnvDuration("CADASTRO_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: EnvDuration("CADASTRO_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: EnvInt("CADASTRO_HTTP_MAX_HEADER_BYTES", 1<<20),

		TrustProxy: EnvBool("CADASTRO_TRUST_PROXY", false),

		CORSAllowedOrigins:   EnvCSV("CADASTRO_CORS_ORIGINS"),
		CORSAllowCredentials: EnvBool("CADASTRO_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("CADASTRO_CORS_MAX_AGE", 300),

		MetricsEnabled: EnvBool("CADASTRO_METRICS_ENABLED", true),

		ActivityStreamQueue: EnvInt("CADASTRO_STREAM_QUEUE", 64),

		RequireTokenSecret: EnvBool("CADASTRO_REQUIRE_TOKEN_SECRET", false),
	}
}
