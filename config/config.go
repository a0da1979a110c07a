package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis configuration
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	RedisURL       string
	RedisKeyPrefix string

	// Auth configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage. S3 is used when S3BucketName is set, the media
	// directory otherwise.
	S3BucketName string
	S3PublicURL  string
	AWSRegion    string
	MediaDir     string
	MediaURL     string

	// API behaviour
	PageSize          int
	RecipeCreateLimit int
	RecipeUpdateLimit int
}

const defaultJWTSecret = "foodgram-dev-secret"

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := defaults()

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	// Sensitive values
	switch env {
	case CI:
		// CI provides everything through environment variables
		cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
		cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
		cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	case Production:
		// Production reads ONLY Docker secrets
		cfg.DBPassword = readSecret("db_password")
		cfg.JWTSecret = readSecret("jwt_secret")
		cfg.RedisPassword = readSecret("redis_password")
	case Development, Test:
		cfg.DBPassword = firstNonEmpty(os.Getenv("DB_PASSWORD"), readSecret("db_password"), cfg.DBPassword)
		cfg.JWTSecret = firstNonEmpty(os.Getenv("JWT_SECRET"), readSecret("jwt_secret"), cfg.JWTSecret)
		cfg.RedisPassword = firstNonEmpty(os.Getenv("REDIS_PASSWORD"), readSecret("redis_password"), cfg.RedisPassword)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	// Validate the configuration
	if err := ValidateConfig(env, cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort:        "8080",
		ServerHost:        "0.0.0.0",
		CORSOrigins:       []string{"http://localhost:3000"},
		DBDriver:          "postgres",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBPassword:        "postgres",
		DBName:            "foodgram",
		DBSSLMode:         "disable",
		SQLitePath:        "foodgram.db",
		MigrationsDir:     "migrations",
		RedisHost:         "localhost",
		RedisPort:         "6379",
		RedisKeyPrefix:    "foodgram",
		JWTSecret:         defaultJWTSecret,
		TokenTTL:          24 * time.Hour,
		MediaDir:          "media",
		MediaURL:          "/media",
		PageSize:          6,
		RecipeCreateLimit: 30,
		RecipeUpdateLimit: 60,
	}
}

// loadEnv overrides defaults with non-sensitive environment variables
func loadEnv(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ServerHost = getEnv("SERVER_HOST", cfg.ServerHost)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", cfg.DBSSLMode)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)

	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RedisKeyPrefix = strings.Trim(getEnv("REDIS_KEY_PREFIX", cfg.RedisKeyPrefix), ":")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.S3BucketName = getEnv("S3_BUCKET_NAME", cfg.S3BucketName)
	cfg.S3PublicURL = getEnv("S3_PUBLIC_URL", cfg.S3PublicURL)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.MediaDir = getEnv("MEDIA_DIR", cfg.MediaDir)
	cfg.MediaURL = strings.TrimSuffix(getEnv("MEDIA_URL", cfg.MediaURL), "/")

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.TokenTTL = d
	}

	var err error
	if cfg.PageSize, err = getEnvInt("PAGE_SIZE", cfg.PageSize); err != nil {
		return err
	}
	if cfg.RecipeCreateLimit, err = getEnvInt("RECIPE_CREATE_LIMIT", cfg.RecipeCreateLimit); err != nil {
		return err
	}
	if cfg.RecipeUpdateLimit, err = getEnvInt("RECIPE_UPDATE_LIMIT", cfg.RecipeUpdateLimit); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN returns the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
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

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer", key)
	}
	return i, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
