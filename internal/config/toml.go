// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Source   SourceConfig   `toml:"source"`
	Delivery DeliveryConfig `toml:"delivery"`
	Report   ReportConfig   `toml:"report"`
	Notify   NotifyConfig   `toml:"notify"`
	Log      LogConfig      `toml:"log"`
}

// SourceConfig locates the event store.
type SourceConfig struct {
	DBPath *string `toml:"db_path"`
}

// DeliveryConfig maps webhook settings.
type DeliveryConfig struct {
	WebhookURL *string `toml:"webhook_url"`
	Timeout    *string `toml:"timeout"`
	Username   *string `toml:"username"`
}

// ReportConfig maps report settings.
type ReportConfig struct {
	MaxDaysBack   *int    `toml:"max_days_back"`
	TrendDays     *int    `toml:"trend_days"`
	OnUnavailable *string `toml:"on_unavailable"`
	Title         *string `toml:"title"`
}

// NotifyConfig maps desktop notification settings.
type NotifyConfig struct {
	OnFailure *bool `toml:"on_failure"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
