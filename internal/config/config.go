// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// SchedulingConfig holds the defaults used when a planning request does not
// supply its own window or durations.
type SchedulingConfig struct {
	WindowStart         string `yaml:"window_start"`
	WindowEnd           string `yaml:"window_end"`
	SlotMinutes         int    `yaml:"slot_minutes"`
	GameDurationMinutes int    `yaml:"game_duration_minutes"`
	MinRestMinutes      int    `yaml:"min_rest_minutes"`
}

type AuditConfig struct {
	// Cron expression for the nightly schedule-integrity sweep.
	CronExpression string `yaml:"cron_expression"`
	Enabled        bool   `yaml:"enabled"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database   DatabaseConfig   `yaml:"database"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Audit      AuditConfig      `yaml:"audit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduling.WindowStart == "" {
		c.Scheduling.WindowStart = "08:00"
	}
	if c.Scheduling.WindowEnd == "" {
		c.Scheduling.WindowEnd = "22:00"
	}
	if c.Scheduling.SlotMinutes == 0 {
		c.Scheduling.SlotMinutes = 30
	}
	if c.Scheduling.GameDurationMinutes == 0 {
		c.Scheduling.GameDurationMinutes = 60
	}
	if c.Audit.CronExpression == "" {
		c.Audit.CronExpression = "0 3 * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if _, err := time.Parse("15:04", c.Scheduling.WindowStart); err != nil {
		return fmt.Errorf("scheduling window_start must be HH:MM: %w", err)
	}
	if _, err := time.Parse("15:04", c.Scheduling.WindowEnd); err != nil {
		return fmt.Errorf("scheduling window_end must be HH:MM: %w", err)
	}
	if c.Scheduling.SlotMinutes <= 0 {
		return fmt.Errorf("scheduling slot_minutes must be positive")
	}
	if c.Scheduling.GameDurationMinutes <= 0 {
		return fmt.Errorf("scheduling game_duration_minutes must be positive")
	}
	if c.Scheduling.MinRestMinutes < 0 {
		return fmt.Errorf("scheduling min_rest_minutes must be 0 or greater")
	}

	return nil
}
