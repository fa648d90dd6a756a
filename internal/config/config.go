package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	APIPrefix             string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret              string
	AccessTokenTTLSeconds  int
	RefreshTokenTTLSeconds int
	BcryptCost             int
}

// CORSConfig lists origins allowed to make cross-origin requests.
type CORSConfig struct {
	AllowedOrigins []string
}

// CatalogConfig tunes product listing and caching.
type CatalogConfig struct {
	CacheTTLSeconds int
	DefaultPerPage  int
	MaxPerPage      int
}

// RateLimitConfig throttles credential endpoints.
type RateLimitConfig struct {
	LoginPerMinute int
}

const (
	DefaultAccessTokenTTL  = 3600
	DefaultRefreshTokenTTL = 604800
)

// Override mutates a loaded Config. Overrides are applied once at startup.
type Override func(*Config)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
			APIPrefix:             getEnv("APP_API_PREFIX", "/api/v1"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLSeconds:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_SECONDS", DefaultAccessTokenTTL),
			RefreshTokenTTLSeconds: getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_SECONDS", DefaultRefreshTokenTTL),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Catalog: CatalogConfig{
			CacheTTLSeconds: getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 300),
			DefaultPerPage:  getEnvAsInt("CATALOG_DEFAULT_PER_PAGE", 10),
			MaxPerPage:      getEnvAsInt("CATALOG_MAX_PER_PAGE", 100),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 10),
		},
	}

	return cfg, nil
}

// Apply runs overrides in order.
func (c *Config) Apply(overrides ...Override) {
	for _, override := range overrides {
		if override != nil {
			override(c)
		}
	}
}

// Setting names persisted in the settings table.
const (
	SettingAccessTokenTTL  = "access_token_expiration"
	SettingRefreshTokenTTL = "refresh_token_expiration"
	SettingCORSOrigins     = "cors_allowed_origins"
)

// FromSettings turns persisted settings into an Override. Unknown or
// malformed values are ignored so the environment defaults stay in effect.
func FromSettings(values map[string]string) Override {
	return func(c *Config) {
		if ttl, ok := positiveInt(values[SettingAccessTokenTTL]); ok {
			c.Auth.AccessTokenTTLSeconds = ttl
		}
		if ttl, ok := positiveInt(values[SettingRefreshTokenTTL]); ok {
			c.Auth.RefreshTokenTTLSeconds = ttl
		}
		if origins := splitList(values[SettingCORSOrigins]); len(origins) > 0 {
			c.CORS.AllowedOrigins = origins
		}
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	if a.AccessTokenTTLSeconds <= 0 {
		return DefaultAccessTokenTTL * time.Second
	}
	return time.Duration(a.AccessTokenTTLSeconds) * time.Second
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	if a.RefreshTokenTTLSeconds <= 0 {
		return DefaultRefreshTokenTTL * time.Second
	}
	return time.Duration(a.RefreshTokenTTLSeconds) * time.Second
}

// CacheTTL returns how long catalog entries stay cached.
func (c CatalogConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func positiveInt(val string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
