package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvDevelopment is the default environment.
	EnvDevelopment = "development"
	// EnvProduction refuses to start without an explicit JWT secret.
	EnvProduction = "production"

	// DevJWTSecret signs tokens when JWT_SECRET is unset outside production.
	// It is public, so anyone can mint admin tokens for a server running with it.
	DevJWTSecret = "dev-only-insecure-jwt-secret-change-me"

	// DefaultAdminPassword is used by provisioning when ADMIN_PASSWORD is unset.
	DefaultAdminPassword = "password123"
)

// ErrMissingJWTSecret is returned by Load in production when no secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set when APP_ENV=production")

// Config holds application level configuration loaded from an optional
// YAML file and environment variables. Environment wins over the file.
type Config struct {
	Env           string   `yaml:"env"`
	ServerPort    string   `yaml:"port"`
	DBDriver      string   `yaml:"db_driver"`
	DatabaseURL   string   `yaml:"database_url"`
	JWTSecret     string   `yaml:"jwt_secret"`
	AdminUsername string   `yaml:"admin_username"`
	AdminPassword string   `yaml:"admin_password"`
	CORSOrigins   []string `yaml:"cors_origins"`
	SeedPosts     bool     `yaml:"seed_posts"`
	LogLevel      string   `yaml:"log_level"`
	SwaggerHost   string   `yaml:"swagger_host"`

	// UsingDevSecret reports that JWTSecret is DevJWTSecret.
	UsingDevSecret bool `yaml:"-"`
	// UsingDefaultAdminPassword reports that AdminPassword is DefaultAdminPassword.
	UsingDefaultAdminPassword bool `yaml:"-"`
}

// Load builds Config from CONFIG_FILE (if set) and the environment with
// sensible defaults. It fails when the signing secret would fall back to
// DevJWTSecret in production.
func Load() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Env = getEnv("APP_ENV", orDefault(cfg.Env, EnvDevelopment))
	cfg.ServerPort = getEnv("PORT", getEnv("SERVER_PORT", orDefault(cfg.ServerPort, "8080")))
	cfg.DBDriver = getEnv("DB_DRIVER", orDefault(cfg.DBDriver, "sqlite"))
	cfg.DatabaseURL = getEnv("DATABASE_URL", orDefault(cfg.DatabaseURL, "herstory.db"))
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", orDefault(cfg.AdminUsername, "admin"))
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.SeedPosts = getEnvBool("SEED_POSTS", cfg.SeedPosts)
	cfg.LogLevel = getEnv("LOG_LEVEL", orDefault(cfg.LogLevel, "info"))
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if cfg.AdminPassword == "" {
		cfg.AdminPassword = DefaultAdminPassword
		cfg.UsingDefaultAdminPassword = true
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTSecret = DevJWTSecret
		cfg.UsingDevSecret = true
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
