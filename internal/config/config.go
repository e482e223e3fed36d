// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"server"`

	Storage struct {
		Root      string `toml:"root"`       // working tree served by the daemon
		CacheSize int    `toml:"cache_size"` // blob cache entries
		InMemory  bool   `toml:"in_memory"`  // keep the database in memory
	} `toml:"storage"`

	Environment string `toml:"environment"` // development, production
	LogLevel    string `toml:"log_level"`   // debug, info, warn, error
	IDScheme    string `toml:"id_scheme"`   // checksum, xxh3
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 7420
	c.Storage.Root = "."
	c.Storage.CacheSize = 256
	c.Environment = "development"
	c.LogLevel = "info"
	c.IDScheme = "checksum"
	return &c
}

// Path returns the config file for the environment named by SVC_ENV.
func Path() string {
	env := os.Getenv("SVC_ENV")
	if env == "" {
		env = "development"
	}
	return fmt.Sprintf("config/config.%s.toml", env)
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown keys %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root is required")
	}
	if c.Storage.CacheSize < 0 {
		return fmt.Errorf("storage.cache_size must not be negative")
	}
	return nil
}

// Addr is the listen address of the daemon.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
