package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

type Config struct {
	ProjectName string // Root message and swagger title (default: Accounts API)
	APIPrefix   string // Route prefix (default: /api/v1)

	SecretKey          []byte        // HMAC secret; random per process when SECRET_KEY is unset
	SecretKeyGenerated bool          // true when SecretKey was generated rather than configured
	Algorithm          string        // HS256, HS384 or HS512 (default: HS256)
	AccessTokenTTL     time.Duration // ACCESS_TOKEN_EXPIRE_MINUTES (default: 30m)
	TokenLeeway        time.Duration // Clock skew allowance when validating tokens (default: 0)

	RateLimitPerMinute int                   // Sliding window limit per client (default: 60)
	LoginLimit         httpx.RateLimitConfig // Token bucket per client and username on /login
	TrustProxy         bool                  // Key limiters on X-Forwarded-For / X-Real-IP
	CORSOrigins        []string              // Allowed origins (default: *)

	DatabaseURL string // postgres:// selects pgx, anything else is a SQLite DSN (default: file:accounts.db)
	PepperFile  string // Path to the password pepper (default: ./pepper)

	AdminUsername string // Seeds an admin into an empty store when set
	AdminPassword string // Generated and logged once when empty
	AdminName     string
	AdminEmail    string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Limiter sweep interval (default: 1m)
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		ProjectName:          getEnvOrDefault("PROJECT_NAME", "Accounts API"),
		APIPrefix:            getEnvOrDefault("API_PREFIX", "/api/v1"),
		Algorithm:            strings.ToUpper(getEnvOrDefault("ALGORITHM", "HS256")),
		AccessTokenTTL:       time.Duration(getEnvIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		TokenLeeway:          getEnvDurationOrDefault("TOKEN_LEEWAY", 0),
		RateLimitPerMinute:   getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
		LoginLimit:           httpx.ParseRateLimitFromEnv("LOGIN", httpx.StrictLimit),
		TrustProxy:           getEnvBoolOrDefault("TRUST_PROXY", false),
		CORSOrigins:          splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		DatabaseURL:          getEnvOrDefault("DATABASE_URL", "file:accounts.db"),
		PepperFile:           getEnvOrDefault("PEPPER_FILE", "pepper"),
		AdminUsername:        os.Getenv("ADMIN_USERNAME"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
		AdminName:            getEnvOrDefault("ADMIN_NAME", "Administrator"),
		AdminEmail:           os.Getenv("ADMIN_EMAIL"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}

	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		cfg.SecretKey = []byte(secret)
	} else if secret, err := cryptox.GenerateToken(cryptox.TokenSize256); err == nil {
		// Tokens stop validating across restarts; New warns about it.
		cfg.SecretKey = []byte(secret)
		cfg.SecretKeyGenerated = true
	}

	return cfg
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if !jwtx.SupportedHMAC(c.Algorithm) {
		errs = append(errs, fmt.Errorf("ALGORITHM: unsupported %q, want HS256, HS384 or HS512", c.Algorithm))
	}
	if len(c.SecretKey) == 0 {
		errs = append(errs, errors.New("SECRET_KEY: must not be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES: must be positive, got %s", c.AccessTokenTTL))
	}
	if c.TokenLeeway < 0 {
		errs = append(errs, fmt.Errorf("TOKEN_LEEWAY: must not be negative, got %s", c.TokenLeeway))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE: must be positive, got %d", c.RateLimitPerMinute))
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL: must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: out of range, got %d", c.Port))
	}

	return errors.Join(errs...)
}

// UsesPostgres reports whether DatabaseURL names a PostgreSQL server.
func (c Config) UsesPostgres() bool {
	u := strings.ToLower(c.DatabaseURL)
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// SQLiteDSN adds the pragmas the service relies on unless the URL already
// carries its own.
func (c Config) SQLiteDSN() string {
	dsn := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, ":memory:") {
		dsn = "file:" + dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
