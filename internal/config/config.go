// Package config loads and validates the storefront's runtime
// configuration from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port     string `envconfig:"PORT"      default:"8080"`
	Env      string `envconfig:"APP_ENV"   default:"local"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DataDir     string `envconfig:"DATA_DIR" default:"./data"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	AdminKey     string `envconfig:"ADMIN_KEY"`
	AdminKeyHash string `envconfig:"ADMIN_KEY_HASH"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

const minAdminKeyLen = 16

// Plaintext keys rejected outside the local environment. There is no
// compiled-in fallback secret: a deployment must inject its own.
var placeholderKeys = []string{
	"admin", "admin123", "changeme", "default", "dev-secret",
	"password", "secret", "supersecret", "test",
}

// Load reads .env (when present), parses the environment and validates the
// result.
func Load(log *zap.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		if log != nil {
			log.Warn("could not read .env file", zap.Error(err))
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsLocal() bool { return c.Env == "local" }

// Validate enforces the admin-credential rules: a credential must be
// configured, a configured hash must be a real bcrypt hash, and outside the
// local environment a plaintext key must be neither a well-known
// placeholder nor shorter than 16 bytes.
func (c Config) Validate() error {
	if c.AdminKey == "" && c.AdminKeyHash == "" {
		return errors.New("ADMIN_KEY or ADMIN_KEY_HASH must be set")
	}

	if c.AdminKeyHash != "" {
		if _, err := bcrypt.Cost([]byte(c.AdminKeyHash)); err != nil {
			return fmt.Errorf("ADMIN_KEY_HASH is not a bcrypt hash: %w", err)
		}
		return nil
	}

	if c.IsLocal() {
		return nil
	}

	lowered := strings.ToLower(c.AdminKey)
	for _, placeholder := range placeholderKeys {
		if lowered == placeholder {
			return fmt.Errorf("ADMIN_KEY %q is a placeholder value; set a real secret", c.AdminKey)
		}
	}
	if len(c.AdminKey) < minAdminKeyLen {
		return fmt.Errorf("ADMIN_KEY must be at least %d bytes outside the local environment", minAdminKeyLen)
	}

	return nil
}
