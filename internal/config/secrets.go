package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Secrets are read from the environment, never from the yaml config
type Secrets struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
}

// LoadSecrets reads secrets from the environment after loading an optional .env file.
// With env set, ".env.<env>" is tried before ".env".
func LoadSecrets(env string) (*Secrets, error) {
	files := []string{".env"}
	if env != "" {
		files = append([]string{".env." + env}, files...)
	}
	for _, f := range files {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	return &s, nil
}

// RequireDatabase returns an error when no database url is configured
func (s *Secrets) RequireDatabase() error {
	if s.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	return nil
}

// RequireJWT returns an error when no token signing secret is configured
func (s *Secrets) RequireJWT() error {
	if s.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	return nil
}
