package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configFileBaseName = "editor_points_config"

	defaultPageSize        = 100
	defaultRequestInterval = 650 * time.Millisecond
	defaultRunTimeout      = 10 * time.Minute
)

// TrackerList is a task list pulled from the tracker for the monthly report
type TrackerList struct {
	ID             string `yaml:"id" validate:"required"`
	Name           string `yaml:"name,omitempty"`
	FreelanceQueue bool   `yaml:"freelanceQueue,omitempty"`
}

// TrackerConfig configures access to the task-tracking API
type TrackerConfig struct {
	BaseURL         string        `yaml:"baseURL" validate:"required,url"`
	Token           string        `yaml:"token,omitempty" validate:"required"`
	Lists           []TrackerList `yaml:"lists" validate:"required,min=1,dive"`
	PageSize        int           `yaml:"pageSize,omitempty" validate:"omitempty,min=1"`
	RequestInterval time.Duration `yaml:"requestInterval,omitempty" validate:"omitempty,min=0"`
}

// DatabaseConfig selects where generated reports are stored
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `yaml:"url" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	Tracker          TrackerConfig  `yaml:"tracker"`
	Timezone         string         `yaml:"timezone" validate:"required"`
	Database         DatabaseConfig `yaml:"database"`
	ReportSheetID    string         `yaml:"reportSheetID,omitempty"`
	GmailUserID      string         `yaml:"gmailUserID,omitempty"`
	GmailSender      string         `yaml:"gmailSender,omitempty"`
	NotifyRecipients []string       `yaml:"notifyRecipients,omitempty" validate:"dive,email"`
	MetricsTextfile  string         `yaml:"metricsTextfile,omitempty"`
	RunTimeout       time.Duration  `yaml:"runTimeout,omitempty" validate:"omitempty,min=0"`
	Incentives       Incentives     `yaml:"incentives"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Location returns the tracker's local time zone, falling back to UTC when
// the configured zone cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FreelanceListIDs returns the ids of lists flagged as freelance queues
func (c *Config) FreelanceListIDs() []string {
	var ids []string
	for _, list := range c.Tracker.Lists {
		if list.FreelanceQueue {
			ids = append(ids, list.ID)
		}
	}
	return ids
}

// FindList returns the configured list with the given id
func (c *Config) FindList(id string) (TrackerList, bool) {
	for _, list := range c.Tracker.Lists {
		if list.ID == id {
			return list, true
		}
	}
	return TrackerList{}, false
}

// LoadWithEnv loads and validates the configuration for an environment.
// For example, env="prod" looks for "editor_points_config.prod.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, defaults, applies environment overrides and validates the configuration
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

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tracker.PageSize == 0 {
		c.Tracker.PageSize = defaultPageSize
	}
	if c.Tracker.RequestInterval == 0 {
		c.Tracker.RequestInterval = defaultRequestInterval
	}
	if c.RunTimeout == 0 {
		c.RunTimeout = defaultRunTimeout
	}
	c.Incentives.ApplyDefaults()
}

// Validate validates the configuration struct, the time zone and the incentive tables
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	seen := make(map[string]bool)
	for i, list := range cfg.Tracker.Lists {
		if seen[list.ID] {
			return fmt.Errorf("duplicate list id in tracker.lists[%d]: %s", i, list.ID)
		}
		seen[list.ID] = true
	}

	return ValidateIncentives(&cfg.Incentives)
}

// findConfigFile returns the config file path for an environment
func findConfigFile(env string) (string, error) {
	name := configFileBaseName + ".yaml"
	if env != "" {
		name = configFileBaseName + "." + env + ".yaml"
	}
	return findFile(name)
}

// findFile looks for name in the current directory, then in the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
