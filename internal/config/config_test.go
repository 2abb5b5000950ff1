package config

import (
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://example.test:9000")
	t.Setenv(EnvDebounceMs, "500")
	t.Setenv(EnvMaxReconnectAttempts, "9")

	cfg := FromEnv()

	if cfg.BaseURL != "http://example.test:9000" {
		t.Errorf("base URL = %q", cfg.BaseURL)
	}
	if cfg.DebounceInterval != 500*time.Millisecond {
		t.Errorf("debounce = %v, want 500ms", cfg.DebounceInterval)
	}
	if cfg.MaxReconnectAttempts != 9 {
		t.Errorf("max reconnect attempts = %d, want 9", cfg.MaxReconnectAttempts)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv(EnvPollIntervalMs, "not-a-number")
	t.Setenv(EnvMaxReconnectAttempts, "-2")

	cfg := FromEnv()

	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("poll interval = %v, want default %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("max reconnect attempts = %d, want default", cfg.MaxReconnectAttempts)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }},
		{"empty ws URL", func(c *Config) { c.WSURL = "" }},
		{"zero debounce", func(c *Config) { c.DebounceInterval = 0 }},
		{"negative poll", func(c *Config) { c.PollInterval = -time.Second }},
		{"zero reconnect attempts", func(c *Config) { c.MaxReconnectAttempts = 0 }},
		{"translate timeout below API timeout", func(c *Config) {
			c.TranslateTimeout = c.APITimeout - time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
