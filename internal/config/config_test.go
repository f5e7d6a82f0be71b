package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SCHEDULER_TIMEZONE", "Asia/Ho_Chi_Minh")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SchedulerSpec != "@every 1m" {
		t.Errorf("SchedulerSpec = %q, want @every 1m", cfg.SchedulerSpec)
	}
	if cfg.GeneratorTimeout != 30*time.Second {
		t.Errorf("GeneratorTimeout = %s, want 30s", cfg.GeneratorTimeout)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			GeneratorTimeout:     time.Second,
			SchedulerConcurrency: 1,
			ScheduleLockTTL:      time.Minute,
			SchedulerTimezone:    "UTC",
			LogFormat:            "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero timeout", func(c *Config) { c.GeneratorTimeout = 0 }, true},
		{"zero concurrency", func(c *Config) { c.SchedulerConcurrency = 0 }, true},
		{"bad timezone", func(c *Config) { c.SchedulerTimezone = "Mars/Olympus" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"json log format", func(c *Config) { c.LogFormat = "JSON" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := Config{AllowedOrigins: "http://a.test, http://b.test,,"}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("Origins() = %v", got)
	}
}
