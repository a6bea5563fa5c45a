// Package config handles configuration loading and validation for postbox.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverBadger   = "badger"
)

// Config holds the application configuration.
type Config struct {
	HTTP       HTTPConfig  `yaml:"http"`
	Relay      RelayConfig `yaml:"relay"`
	Store      StoreConfig `yaml:"store"`
	WebDir     string      `yaml:"web_dir"`     // empty serves the embedded site
	StaticDeny []string    `yaml:"static_deny"` // glob patterns under static/ never served
	DataDir    string      `yaml:"-"`           // set by caller, not from config file
}

// HTTPConfig configures the submission gateway.
type HTTPConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Mode         string        `yaml:"mode"` // gin mode
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
}

// RelayConfig configures the datagram channel between gateway and listener.
type RelayConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	SendTimeout time.Duration `yaml:"send_timeout"`
	MaxDatagram int           `yaml:"max_datagram"`
}

// StoreConfig selects and locates the message store.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // file (jsonfile) or directory (badger); empty derives from DataDir
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:         3000,
			Mode:         "release",
			MaxBodyBytes: 64 << 10,
			ReadTimeout:  10 * time.Second,
		},
		Relay: RelayConfig{
			Host:        "127.0.0.1",
			Port:        5000,
			SendTimeout: 2 * time.Second,
			MaxDatagram: 65507,
		},
		Store: StoreConfig{
			Driver: DriverJSONFile,
		},
		StaticDeny: []string{"**/.*"},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.HTTP.Port == 0 {
		c.HTTP.Port = defaults.HTTP.Port
	}
	if c.HTTP.Mode == "" {
		c.HTTP.Mode = defaults.HTTP.Mode
	}
	if c.HTTP.MaxBodyBytes == 0 {
		c.HTTP.MaxBodyBytes = defaults.HTTP.MaxBodyBytes
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = defaults.HTTP.ReadTimeout
	}
	if c.Relay.Host == "" {
		c.Relay.Host = defaults.Relay.Host
	}
	if c.Relay.Port == 0 {
		c.Relay.Port = defaults.Relay.Port
	}
	if c.Relay.SendTimeout == 0 {
		c.Relay.SendTimeout = defaults.Relay.SendTimeout
	}
	if c.Relay.MaxDatagram == 0 {
		c.Relay.MaxDatagram = defaults.Relay.MaxDatagram
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
}

// HTTPAddr returns the address the gateway listens on.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// RelayAddr returns the listener's datagram address.
func (c *Config) RelayAddr() string {
	return net.JoinHostPort(c.Relay.Host, strconv.Itoa(c.Relay.Port))
}

// StoragePath returns the message store location for the configured driver.
func (c *Config) StoragePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Driver == DriverBadger {
		return filepath.Join(c.DataDir, "storage", "badger")
	}
	return filepath.Join(c.DataDir, "storage", "data.json")
}
