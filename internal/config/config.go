package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/coffee-rota/pkg/core/availability"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultBadgeRefresh = 30 * time.Second
	defaultJWTAudience  = "authenticated"
)

// Config represents the application configuration
type Config struct {
	// IANA zone the shops trade in. Week boundaries and availability days are local to it.
	Timezone string `yaml:"timezone" validate:"required"`
	// Weekly rrule whose BYDAY lists the days staff cannot edit availability
	AvailabilityLockRule string        `yaml:"availabilityLockRule,omitempty"`
	HTTPAddr             string        `yaml:"httpAddr,omitempty"`
	BadgeRefreshInterval time.Duration `yaml:"badgeRefreshInterval,omitempty" validate:"omitempty,min=1s"`
	JWTAudience          string        `yaml:"jwtAudience,omitempty"`
	DefaultStoreID       string        `yaml:"defaultStoreID,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from rota_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "rota_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AvailabilityLockRule == "" {
		c.AvailabilityLockRule = availability.DefaultLockRule
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = defaultHTTPAddr
	}
	if c.BadgeRefreshInterval == 0 {
		c.BadgeRefreshInterval = defaultBadgeRefresh
	}
	if c.JWTAudience == "" {
		c.JWTAudience = defaultJWTAudience
	}
}

// Validate validates the configuration struct, the timezone and the lock rule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := timerange.NewClock(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	if cfg.AvailabilityLockRule != "" {
		opt, err := rrule.StrToROption(cfg.AvailabilityLockRule)
		if err != nil {
			return fmt.Errorf("invalid rrule in availabilityLockRule: %w", err)
		}
		if opt.Freq != rrule.WEEKLY || len(opt.Byweekday) == 0 {
			return fmt.Errorf("availabilityLockRule must be weekly with BYDAY, got %q", cfg.AvailabilityLockRule)
		}
	}

	return nil
}

func configFileName(env string) string {
	if env == "" {
		return "rota_config.yaml"
	}
	return "rota_config." + env + ".yaml"
}

// findConfigFile searches for the named config file in current directory and home directory
func findConfigFile(name string) (string, error) {
	// Check current directory
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
