// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	GinMode          string        `env:"GIN_MODE" envDefault:"debug"`
	DBPath           string        `env:"DB_PATH" envDefault:"data/portfolio.db"`
	ContentPath      string        `env:"CONTENT_PATH"`
	AdminUsername    string        `env:"ADMIN_USERNAME"`
	AdminPassword    string        `env:"ADMIN_PASSWORD"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	VisitorRetention time.Duration `env:"VISITOR_RETENTION" envDefault:"8760h"`
}

// Load parses the environment. Values from a .env file are already in the
// environment when the godotenv autoloader is imported by main.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// AdminCredentials returns the admin login, falling back to development
// defaults. usedDefault reports whether either value was defaulted.
func (c Config) AdminCredentials() (username, password string, usedDefault bool) {
	username, password = c.AdminUsername, c.AdminPassword
	if username == "" {
		username = "admin"
		usedDefault = true
	}
	if password == "" {
		password = "admin123"
		usedDefault = true
	}
	return username, password, usedDefault
}
