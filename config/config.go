package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AuthModePerUser      = "per_user"
	AuthModeSharedSecret = "shared_secret"
)

type Config struct {
	Port     string
	LogLevel string
	// Database
	DBDriver string
	DBPath   string // SQLite file, ":memory:" for throwaway databases
	DBUrl    string // PostgreSQL connection string
	// Authentication
	AuthMode    string
	RequireAuth bool // Guard job endpoints with a bearer token
	JWTSecret   string
	JWTTTL      time.Duration
	BcryptCost  int
	// CORS
	AllowedOrigins []string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitAuthThreshold   int
	RateLimitGlobalThreshold int
}

func LoadConfig() (*Config, error) {
	// Load .env file when present; real environment variables win
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "5000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:   getEnv("DB_PATH", "./jobs.db"),
		DBUrl:    getEnv("DATABASE_URL", ""),

		AuthMode:    strings.ToLower(getEnv("AUTH_MODE", AuthModePerUser)),
		RequireAuth: getEnvBool("REQUIRE_AUTH", true),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", getEnv("FRONTEND_URL", "http://localhost:3000"))),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitAuthThreshold:   getEnvInt("RATE_LIMIT_AUTH_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 300),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverPostgres && cfg.DBUrl == "" {
		log.Println("WARNING: DB_DRIVER=postgres but DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	if cfg.RequireAuth && cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET not set. A random secret is generated and tokens will not survive a restart.")
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return &Error{Key: "DB_DRIVER", Value: c.DBDriver}
	}
	switch c.AuthMode {
	case AuthModePerUser, AuthModeSharedSecret:
	default:
		return &Error{Key: "AUTH_MODE", Value: c.AuthMode}
	}
	// cors refuses to build a handler with no allowed origin
	if len(c.AllowedOrigins) == 0 {
		return &Error{Key: "CORS_ALLOWED_ORIGINS"}
	}
	return nil
}

// SharedSecret reports whether a single application-wide password is used.
func (c *Config) SharedSecret() bool {
	return c.AuthMode == AuthModeSharedSecret
}

// Error describes an environment variable holding an unsupported value.
type Error struct {
	Key   string
	Value string
}

func (e *Error) Error() string {
	return "config: unsupported value " + strconv.Quote(e.Value) + " for " + e.Key
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
