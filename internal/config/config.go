package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	EnvDatabaseURL = "DATABASE_URL"

	DefaultDatabaseFile = "tracking.db"
)

// ServiceConfig configures the trackd application server.
type ServiceConfig struct {
	Name           string   `toml:"name"`
	Bind           string   `toml:"bind"`
	CorsOrigins    []string `toml:"cors_origins"`
	DatabaseURL    string   `toml:"database_url"`
	DatabaseFile   string   `toml:"database_file"`
	Workers        int      `toml:"workers"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	AdminUsername  string   `toml:"admin_username"`
	AdminPassword  string   `toml:"admin_password"`
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:           "trackd",
		Bind:           "0.0.0.0:5000",
		DatabaseFile:   DefaultDatabaseFile,
		Workers:        4,
		TimeoutSeconds: 120,
	}
}

func LoadServiceConfig(path string) (ServiceConfig, error) {
	cfg := DefaultServiceConfig()
	if err := loadToml(path, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	applyDefaults(&cfg)
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv layers environment overrides on top of file/default values.
// DATABASE_URL selects the postgres path exactly as the original deployment
// platform does.
func ApplyEnv(cfg *ServiceConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); v != "" {
		cfg.DatabaseURL = v
	}
}

// DSN resolves the datastore target: the database URL when set, otherwise
// the local sqlite file.
func (c ServiceConfig) DSN() string {
	if strings.TrimSpace(c.DatabaseURL) != "" {
		return c.DatabaseURL
	}
	if strings.TrimSpace(c.DatabaseFile) != "" {
		return c.DatabaseFile
	}
	return DefaultDatabaseFile
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *ServiceConfig) {
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = "trackd"
	}
	if strings.TrimSpace(cfg.Bind) == "" {
		cfg.Bind = "0.0.0.0:5000"
	}
	if strings.TrimSpace(cfg.DatabaseFile) == "" {
		cfg.DatabaseFile = DefaultDatabaseFile
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 120
	}
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Bind) == "" {
		return fmt.Errorf("service config missing bind address")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("service config workers must be >= 1, got %d", cfg.Workers)
	}
	if cfg.TimeoutSeconds < 1 {
		return fmt.Errorf("service config timeout_seconds must be >= 1, got %d", cfg.TimeoutSeconds)
	}
	return nil
}
