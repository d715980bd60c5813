package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	SSOSecret             string
	SSOIssuer             string
	SSOAudience           string
	SessionTTL            time.Duration
	AdminEmails           []string
	DataEncryptionKey     string
	Environment           string
	CORSAllowedOrigins    []string
	CookieSecure          bool
	TrustProxyHeaders     bool
	MigrationsDir         string
	RunMigrations         bool
	RunSeed               bool
	SeedTenantName        string
	SeedTenantHROrgID     string
	MaxBodyBytes          int64
	RateLimitPerMinute    int
	PINRateLimitPerMinute int
	MetricsEnabled        bool
	ShutdownTimeout       time.Duration
	AutoCompleteInterval  time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env failed", "err", err)
	}

	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		SSOSecret:             getEnv("SSO_JWT_SECRET", ""),
		SSOIssuer:             getEnv("SSO_ISSUER", "hr-app"),
		SSOAudience:           getEnv("SSO_AUDIENCE", "payroll-app"),
		SessionTTL:            getEnvDuration("SESSION_TTL", 8*time.Hour),
		AdminEmails:           getEnvList("ADMIN_EMAILS"),
		DataEncryptionKey:     getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:           getEnv("APP_ENV", "development"),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
		CookieSecure:          getEnvBool("COOKIE_SECURE", false),
		TrustProxyHeaders:     getEnvBool("TRUST_PROXY_HEADERS", false),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:               getEnvBool("RUN_SEED", true),
		SeedTenantName:        getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedTenantHROrgID:     getEnv("SEED_TENANT_HR_ORG_ID", ""),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		PINRateLimitPerMinute: getEnvInt("PIN_RATE_LIMIT_PER_MINUTE", 10),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout:       getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AutoCompleteInterval:  getEnvDuration("AUTO_COMPLETE_INTERVAL", time.Hour),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.SSOSecret) == "" {
		return fmt.Errorf("SSO_JWT_SECRET is required")
	}
	if c.IsProduction() {
		if c.JWTSecret == c.SSOSecret {
			return fmt.Errorf("SSO_JWT_SECRET must differ from JWT_SECRET in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 || c.PINRateLimitPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
