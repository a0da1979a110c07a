package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the given environment
func ValidateConfig(env Environment, cfg *Config) error {
	var errs ValidationErrors

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be a port number"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required for postgres"})
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", "secret is required"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
		if env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"jwt_secret", "secret is required"})
	} else if env == Production && cfg.JWTSecret == defaultJWTSecret {
		errs = append(errs, ValidationError{"jwt_secret", "the development secret must not be used in production"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}
	if cfg.PageSize < 1 {
		errs = append(errs, ValidationError{"PAGE_SIZE", "must be at least 1"})
	}
	if cfg.S3BucketName != "" && cfg.AWSRegion == "" {
		errs = append(errs, ValidationError{"AWS_REGION", "is required when S3_BUCKET_NAME is set"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
