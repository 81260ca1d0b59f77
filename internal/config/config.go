// Package config handles configuration loading for tradelens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Source    SourceConfig    `mapstructure:"source"    yaml:"source"`
	Calendar  CalendarConfig  `mapstructure:"calendar"  yaml:"calendar"`
	Correlate CorrelateConfig `mapstructure:"correlate" yaml:"correlate"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SourceConfig holds the calendar source page settings.
type SourceConfig struct {
	URL string `mapstructure:"url" yaml:"url"` // calendar page base URL
}

// CalendarConfig holds extraction settings.
type CalendarConfig struct {
	TitleColumn int      `mapstructure:"title_column" yaml:"title_column"` // description cell index in the standard layout
	Currencies  []string `mapstructure:"currencies"   yaml:"currencies"`
}

// CorrelateConfig holds trade-correlation settings.
type CorrelateConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"` // concurrent trades per batch
}

// StorageConfig holds the embedded event store settings.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// NewsConfig holds the macro-news feed list.
type NewsConfig struct {
	Feeds []FeedConfig `mapstructure:"feeds" yaml:"feeds"`
	Limit int          `mapstructure:"limit" yaml:"limit"`
}

// FeedConfig is one RSS feed entry.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tradelens/config.yaml (home directory)
//  3. /etc/tradelens/config.yaml (system)
//
// Environment variables override config file values.
// Format: TRADELENS_<SECTION>_<KEY>, e.g., TRADELENS_SOURCE_URL
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tradelens"))
	v.AddConfigPath("/etc/tradelens")

	v.SetEnvPrefix("TRADELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TRADELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.url", "")
	v.SetDefault("calendar.title_column", 4)
	v.SetDefault("calendar.currencies", []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "NZD"})
	v.SetDefault("correlate.workers", 4)
	v.SetDefault("storage.path", filepath.Join(homeDir(), ".tradelens", "events"))
	v.SetDefault("news.limit", 30)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8710)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user home directory, or "." when unresolvable.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
