package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values
const (
	DefaultBaseURL              = "http://localhost:8000"
	DefaultWSURL                = "ws://localhost:8000"
	DefaultDebounceInterval     = 2000 * time.Millisecond
	DefaultAPITimeout           = 30 * time.Second
	DefaultTranslateTimeout     = 120 * time.Second
	DefaultPollInterval         = 3000 * time.Millisecond
	DefaultReconnectInterval    = 2000 * time.Millisecond
	DefaultMaxReconnectAttempts = 5
)

// Environment variable keys
const (
	EnvBaseURL              = "SUBCUE_BASE_URL"
	EnvWSURL                = "SUBCUE_WS_URL"
	EnvDebounceMs           = "SUBCUE_DEBOUNCE_MS"
	EnvAPITimeoutMs         = "SUBCUE_API_TIMEOUT_MS"
	EnvTranslateTimeoutMs   = "SUBCUE_TRANSLATE_TIMEOUT_MS"
	EnvPollIntervalMs       = "SUBCUE_POLL_INTERVAL_MS"
	EnvReconnectIntervalMs  = "SUBCUE_RECONNECT_INTERVAL_MS"
	EnvMaxReconnectAttempts = "SUBCUE_MAX_RECONNECT_ATTEMPTS"
)

// holds every externally supplied tunable of the sync engine
type Config struct {
	BaseURL string
	WSURL   string

	// save debounce quiet period
	DebounceInterval time.Duration

	// default timeout for CRUD round trips
	APITimeout time.Duration

	// extended timeout for translate-text requests; translation latency is
	// materially higher than simple CRUD calls
	TranslateTimeout time.Duration

	PollInterval         time.Duration
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
}

// returns a config with all defaults applied
func Default() Config {
	return Config{
		BaseURL:              DefaultBaseURL,
		WSURL:                DefaultWSURL,
		DebounceInterval:     DefaultDebounceInterval,
		APITimeout:           DefaultAPITimeout,
		TranslateTimeout:     DefaultTranslateTimeout,
		PollInterval:         DefaultPollInterval,
		ReconnectInterval:    DefaultReconnectInterval,
		MaxReconnectAttempts: DefaultMaxReconnectAttempts,
	}
}

// returns the default config with environment overrides applied
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvWSURL); v != "" {
		cfg.WSURL = v
	}
	if d, ok := envMillis(EnvDebounceMs); ok {
		cfg.DebounceInterval = d
	}
	if d, ok := envMillis(EnvAPITimeoutMs); ok {
		cfg.APITimeout = d
	}
	if d, ok := envMillis(EnvTranslateTimeoutMs); ok {
		cfg.TranslateTimeout = d
	}
	if d, ok := envMillis(EnvPollIntervalMs); ok {
		cfg.PollInterval = d
	}
	if d, ok := envMillis(EnvReconnectIntervalMs); ok {
		cfg.ReconnectInterval = d
	}
	if v := os.Getenv(EnvMaxReconnectAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxReconnectAttempts = n
		}
	}

	return cfg
}

// reports whether the config is usable
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.WSURL == "" {
		return fmt.Errorf("websocket URL is required")
	}
	if c.DebounceInterval <= 0 {
		return fmt.Errorf("debounce interval must be positive, got %v", c.DebounceInterval)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.ReconnectInterval <= 0 {
		return fmt.Errorf("reconnect interval must be positive, got %v", c.ReconnectInterval)
	}
	if c.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("max reconnect attempts must be positive, got %d", c.MaxReconnectAttempts)
	}
	if c.TranslateTimeout < c.APITimeout {
		return fmt.Errorf(
			"translate timeout %v must not be shorter than API timeout %v",
			c.TranslateTimeout,
			c.APITimeout,
		)
	}
	return nil
}

func envMillis(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
