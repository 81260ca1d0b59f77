package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaults(t *testing.T) {
	os.Unsetenv("TRADELENS_SOURCE_URL")
	os.Unsetenv("TRADELENS_API_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Calendar.TitleColumn != 4 {
		t.Errorf("Calendar.TitleColumn: got %d, want 4", cfg.Calendar.TitleColumn)
	}
	if len(cfg.Calendar.Currencies) != 8 {
		t.Errorf("Calendar.Currencies: got %d codes, want 8", len(cfg.Calendar.Currencies))
	}
	if cfg.Correlate.Workers != 4 {
		t.Errorf("Correlate.Workers: got %d, want 4", cfg.Correlate.Workers)
	}
	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 8710 {
		t.Errorf("API defaults: got %s:%d", cfg.API.Host, cfg.API.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging defaults: got (%q, %q)", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.News.Limit != 30 {
		t.Errorf("News.Limit: got %d, want 30", cfg.News.Limit)
	}
	if cfg.Storage.Path == "" {
		t.Error("Storage.Path default should not be empty")
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
source:
  url: https://calendar.example.com/week
calendar:
  title_column: 5
  currencies: [USD, EUR]
correlate:
  workers: 8
storage:
  path: /tmp/tradelens-test
news:
  feeds:
    - name: ForexLive
      url: https://www.forexlive.com/feed/news
  limit: 10
api:
  host: 0.0.0.0
  port: 9000
logging:
  level: debug
  format: json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Source.URL != "https://calendar.example.com/week" {
		t.Errorf("Source.URL: got %q", cfg.Source.URL)
	}
	if cfg.Calendar.TitleColumn != 5 {
		t.Errorf("Calendar.TitleColumn: got %d, want 5", cfg.Calendar.TitleColumn)
	}
	if len(cfg.Calendar.Currencies) != 2 {
		t.Errorf("Calendar.Currencies: got %v", cfg.Calendar.Currencies)
	}
	if cfg.Correlate.Workers != 8 {
		t.Errorf("Correlate.Workers: got %d, want 8", cfg.Correlate.Workers)
	}
	if len(cfg.News.Feeds) != 1 || cfg.News.Feeds[0].Name != "ForexLive" {
		t.Errorf("News.Feeds: got %+v", cfg.News.Feeds)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port: got %d, want 9000", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging: got (%q, %q)", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing config file should error")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TRADELENS_API_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("API.Port: got %d, want env override 9999", cfg.API.Port)
	}
}
