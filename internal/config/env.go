package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable that overrides the config file
const EnvPrefix = "EDITOR_POINTS_"

// envOverrides holds the settings that may come from the environment.
// Secrets are normally only provided this way.
type envOverrides struct {
	TrackerToken   string `koanf:"tracker_token"`
	TrackerBaseURL string `koanf:"tracker_base_url"`
	DatabaseDriver string `koanf:"database_driver"`
	DatabaseURL    string `koanf:"database_url"`
	ReportSheetID  string `koanf:"report_sheet_id"`
	Timezone       string `koanf:"timezone"`
}

// applyEnvOverrides layers EDITOR_POINTS_* variables over the loaded file.
// EDITOR_POINTS_TRACKER_TOKEN maps to tracker_token and so on.
func applyEnvOverrides(cfg *Config) error {
	k := koanf.New(".")

	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var overrides envOverrides
	if err := k.UnmarshalWithConf("", &overrides, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("failed to decode environment overrides: %w", err)
	}

	if overrides.TrackerToken != "" {
		cfg.Tracker.Token = overrides.TrackerToken
	}
	if overrides.TrackerBaseURL != "" {
		cfg.Tracker.BaseURL = overrides.TrackerBaseURL
	}
	if overrides.DatabaseDriver != "" {
		cfg.Database.Driver = overrides.DatabaseDriver
	}
	if overrides.DatabaseURL != "" {
		cfg.Database.URL = overrides.DatabaseURL
	}
	if overrides.ReportSheetID != "" {
		cfg.ReportSheetID = overrides.ReportSheetID
	}
	if overrides.Timezone != "" {
		cfg.Timezone = overrides.Timezone
	}

	return nil
}
