package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines runtime configuration.
type Config struct {
	Tick   TickConfig   `yaml:"tick"`
	Link   LinkConfig   `yaml:"link"`
	Cache  CacheConfig  `yaml:"cache"`
	Client ClientConfig `yaml:"client"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
}

type TickConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type LinkConfig struct {
	StartupDelay    time.Duration `yaml:"startup_delay"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	PollErrorPolicy string        `yaml:"poll_error_policy"`
}

// CacheConfig configures the parsed document cache and the initial result cache contents.
type CacheConfig struct {
	DocumentCacheSize int                       `yaml:"document_cache_size"`
	Restore           map[string]map[string]any `yaml:"restore"`
}

type ClientConfig struct {
	SSRForceFetchDelay time.Duration `yaml:"ssr_force_fetch_delay"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() Config {
	return Config{
		Tick: TickConfig{
			Interval: time.Second,
		},
		Link: LinkConfig{
			StartupDelay:    300 * time.Millisecond,
			PollInterval:    time.Second,
			PollErrorPolicy: "stop",
		},
		Cache: CacheConfig{
			DocumentCacheSize: 128,
			Restore: map[string]map[string]any{
				"ROOT_QUERY": {
					"__typename": "Query",
					"tick":       0,
				},
			},
		},
		Client: ClientConfig{
			SSRForceFetchDelay: 100 * time.Millisecond,
		},
		DB: DBConfig{
			Path: ":memory:",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the YAML file named by TICKLINK_CONFIG_PATH,
// if any, and environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("TICKLINK_CONFIG_PATH"))
}

// LoadFile reads configuration from the YAML file at path, then applies
// environment overrides. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"TICKLINK_TICK_INTERVAL", &cfg.Tick.Interval},
		{"TICKLINK_STARTUP_DELAY", &cfg.Link.StartupDelay},
		{"TICKLINK_POLL_INTERVAL", &cfg.Link.PollInterval},
		{"TICKLINK_SSR_FORCE_FETCH_DELAY", &cfg.Client.SSRForceFetchDelay},
	}
	for _, d := range durations {
		raw := os.Getenv(d.env)
		if raw == "" {
			continue
		}
		value, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = value
	}

	if policy := os.Getenv("TICKLINK_POLL_ERROR_POLICY"); policy != "" {
		cfg.Link.PollErrorPolicy = policy
	}
	if sizeStr := os.Getenv("TICKLINK_DOCUMENT_CACHE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TICKLINK_DOCUMENT_CACHE_SIZE: %w", err)
		}
		cfg.Cache.DocumentCacheSize = size
	}
	if dbPath := os.Getenv("TICKLINK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TICKLINK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that intervals are positive and enumerated values are known.
func (c Config) Validate() error {
	if c.Tick.Interval <= 0 {
		return fmt.Errorf("tick.interval must be positive, got %s", c.Tick.Interval)
	}
	if c.Link.StartupDelay < 0 {
		return fmt.Errorf("link.startup_delay must not be negative, got %s", c.Link.StartupDelay)
	}
	if c.Link.PollInterval <= 0 {
		return fmt.Errorf("link.poll_interval must be positive, got %s", c.Link.PollInterval)
	}
	switch c.Link.PollErrorPolicy {
	case "stop", "continue":
	default:
		return fmt.Errorf("link.poll_error_policy must be stop or continue, got %q", c.Link.PollErrorPolicy)
	}
	if c.Cache.DocumentCacheSize <= 0 {
		return fmt.Errorf("cache.document_cache_size must be positive, got %d", c.Cache.DocumentCacheSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// A restore snapshot in the file replaces the default one instead of
	// merging into it.
	var restore struct {
		Cache struct {
			Restore *yaml.Node `yaml:"restore"`
		} `yaml:"cache"`
	}
	if err := yaml.Unmarshal(data, &restore); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if restore.Cache.Restore != nil {
		cfg.Cache.Restore = nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
