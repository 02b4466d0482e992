// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ghxstship/accounts/internal/platform"
)

// Auth backend selection values for AUTH_BACKEND.
const (
	BackendGoTrue = "gotrue"
	BackendLocal  = "local"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AppBaseURL is the public web-app base URL used for email redirect links.
	AppBaseURL string `mapstructure:"APP_BASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// AuthBackend selects the credential store: "gotrue" (hosted provider) or "local".
	AuthBackend string `mapstructure:"AUTH_BACKEND"`

	// GoTrueURL is the hosted auth provider base URL. Required when AUTH_BACKEND=gotrue.
	GoTrueURL string `mapstructure:"GOTRUE_URL"`
	// GoTrueAnonKey is the public (anon) API key for client-grade calls. Required when AUTH_BACKEND=gotrue.
	GoTrueAnonKey string `mapstructure:"GOTRUE_ANON_KEY"`
	// GoTrueServiceKey is the service-role key for administrative calls. Required when AUTH_BACKEND=gotrue.
	GoTrueServiceKey string `mapstructure:"GOTRUE_SERVICE_KEY"`
	// GoTrueJWTSecret verifies provider-issued HS256 access tokens. Required when AUTH_BACKEND=gotrue.
	GoTrueJWTSecret string `mapstructure:"GOTRUE_JWT_SECRET"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file. Local backend only.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file. Local backend only.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim for locally issued tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim for locally issued tokens.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12. Local backend only.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// PlatformDefaultRoles configures the default role per platform as data,
	// e.g. "atlvs=ATLVS_VIEWER,compvss=COMPVSS_VIEWER,gvteway=GVTEWAY_MEMBER".
	// Empty uses the shipped table.
	PlatformDefaultRoles string `mapstructure:"PLATFORM_DEFAULT_ROLES"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses. Empty disables Kafka telemetry.
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs.
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("AUTH_BACKEND", BackendGoTrue)
	v.SetDefault("JWT_ISSUER", "ghxstship-accounts")
	v.SetDefault("JWT_AUDIENCE", "authenticated")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("PLATFORM_DEFAULT_ROLES", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "ghxstship-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "ghxstship-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	switch cfg.AuthBackend {
	case BackendGoTrue:
		// Missing provider keys fail fast: every operation would fail at
		// the first network call otherwise.
		if cfg.GoTrueURL == "" || cfg.GoTrueAnonKey == "" || cfg.GoTrueServiceKey == "" {
			return nil, errors.New("config: GOTRUE_URL, GOTRUE_ANON_KEY, and GOTRUE_SERVICE_KEY must be set when AUTH_BACKEND=gotrue")
		}
	case BackendLocal:
	default:
		return nil, errors.New("config: AUTH_BACKEND must be gotrue or local")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if _, err := platform.ParseRoleDefaults(cfg.PlatformDefaultRoles); err != nil {
		return nil, errors.New("config: invalid PLATFORM_DEFAULT_ROLES: " + err.Error())
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// RoleDefaults returns the configured per-platform default role table.
// Load already validated the config string.
func (c *Config) RoleDefaults() platform.RoleDefaults {
	rd, err := platform.ParseRoleDefaults(c.PlatformDefaultRoles)
	if err != nil {
		return platform.StandardRoleDefaults()
	}
	return rd
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
