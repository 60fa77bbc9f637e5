package infra

import (
	"errors"
	"fmt"
	"os"

	"darkcross/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds every application setting. Sensitive values are overridden
// from environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		WSURL     string   `yaml:"ws_url"`
		AccessKey string   `yaml:"access_key"`
		SecretKey string   `yaml:"secret_key"`
		Symbols   []string `yaml:"symbols"`
	} `yaml:"feed"`

	RefPrice struct {
		URL             string `yaml:"url"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"ref_price"`

	Engine struct {
		InboxSize int `yaml:"inbox_size"`
	} `yaml:"engine"`

	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = ":8080"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/darkcross.db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Feed.WSURL == "" || (!hasPrefix(c.Feed.WSURL, "ws://") && !hasPrefix(c.Feed.WSURL, "wss://")) {
		return &domain.ConfigError{Field: "feed.ws_url", Err: fmt.Errorf("invalid WS URL: %s", c.Feed.WSURL)}
	}
	if len(c.Feed.Symbols) == 0 {
		return &domain.ConfigError{Field: "feed.symbols", Err: errors.New("at least one symbol is required")}
	}

	if c.RefPrice.URL == "" || (!hasPrefix(c.RefPrice.URL, "http://") && !hasPrefix(c.RefPrice.URL, "https://")) {
		return &domain.ConfigError{Field: "ref_price.url", Err: fmt.Errorf("invalid URL: %s", c.RefPrice.URL)}
	}
	if c.RefPrice.PollIntervalSec <= 0 {
		return &domain.ConfigError{Field: "ref_price.poll_interval_sec", Err: errors.New("must be positive")}
	}

	if c.Engine.InboxSize <= 0 {
		return &domain.ConfigError{Field: "engine.inbox_size", Err: errors.New("must be positive")}
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv replaces settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("DARKCROSS_FEED_KEY"); key != "" {
		cfg.Feed.AccessKey = key
	}
	if secret := os.Getenv("DARKCROSS_FEED_SECRET"); secret != "" {
		cfg.Feed.SecretKey = secret
	}
	if path := os.Getenv("DARKCROSS_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
