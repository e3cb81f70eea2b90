package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "foodgram-dev-secret-change-me"

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerHost     string
	ServerPort     string
	BaseURL        string
	AllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration, empty URL disables Redis-backed features
	RedisURL      string
	RedisPassword string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Media storage
	MediaBackend string
	MediaRoot    string
	S3BucketName string
	AWSRegion    string

	// Logging
	LogLevel  string
	LogFormat string

	// API behaviour
	PageSize        int
	RecipeRateLimit int
}

// LoadConfig builds a Config from an optional .env file, environment
// variables and docker secrets, then validates it.
func LoadConfig() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	env := GetEnvironment()
	cfg := &Config{
		Env:          env,
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		BaseURL:      strings.TrimRight(getEnv("BASE_URL", "http://localhost"), "/"),
		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnvOrSecret("DB_USER", "db_user", "postgres"),
		DBPassword:   getEnvOrSecret("DB_PASSWORD", "db_password", ""),
		DBName:       getEnv("DB_NAME", "foodgram"),
		DBSSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:   getEnv("SQLITE_PATH", "foodgram.db"),
		RedisURL:     getEnvOrSecret("REDIS_URL", "redis_url", ""),
		JWTSecret:    getEnvOrSecret("JWT_SECRET", "jwt_secret", ""),
		MediaBackend: strings.ToLower(getEnv("MEDIA_BACKEND", "local")),
		MediaRoot:    getEnv("MEDIA_ROOT", "media"),
		S3BucketName: getEnv("S3_BUCKET_NAME", "foodgram-media"),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", defaultLogFormat(env)),
	}
	cfg.RedisPassword = getEnvOrSecret("REDIS_PASSWORD", "redis_password", "")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"))

	if cfg.JWTSecret == "" && !env.IsProduction() {
		cfg.JWTSecret = DefaultJWTSecret
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.PageSize, err = strconv.Atoi(getEnv("PAGE_SIZE", "6")); err != nil {
		return nil, fmt.Errorf("invalid PAGE_SIZE: %w", err)
	}
	if cfg.RecipeRateLimit, err = strconv.Atoi(getEnv("RECIPE_RATE_LIMIT", "30")); err != nil {
		return nil, fmt.Errorf("invalid RECIPE_RATE_LIMIT: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PostgresDSN returns the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func defaultLogFormat(env Environment) string {
	if env.IsDevelopment() {
		return "console"
	}
	return "json"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// getEnvOrSecret prefers the environment variable, then the docker secret.
func getEnvOrSecret(key, secret, fallback string) string {
	if v := getEnv(key, ""); v != "" {
		return v
	}
	if v := readSecret(secret); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
