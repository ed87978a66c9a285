// Package config reads the node configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iv-menshenin/uniqid/fleetctrl"
	"github.com/iv-menshenin/uniqid/platform"
	"github.com/iv-menshenin/uniqid/transport"
	"github.com/iv-menshenin/uniqid/uid"
)

var (
	ErrUnknownEntropy  = errors.New("unknown entropy source")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

type Config struct {
	// NodeID is generated when empty.
	NodeID            uid.ID        `yaml:"node_id"`
	Port              uint16        `yaml:"port"`
	LogLevel          string        `yaml:"log_level"`
	Entropy           string        `yaml:"entropy"`
	PersistentKeys    bool          `yaml:"persistent_keys"`
	OwnershipTimeout  time.Duration `yaml:"ownership_timeout"`
	OwnershipWindow   time.Duration `yaml:"ownership_window"`
	DiscoveryInterval time.Duration `yaml:"discovery_interval"`
	Keys              []string      `yaml:"keys"`
}

func Default() *Config {
	return &Config{
		Port:              transport.DefaultPort,
		LogLevel:          "error",
		Entropy:           "crypto",
		OwnershipTimeout:  100 * time.Millisecond,
		OwnershipWindow:   10 * time.Millisecond,
		DiscoveryInterval: time.Second,
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var cfg = Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("can't parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := platform.ByName(c.Entropy); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntropy, c.Entropy)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, key := range c.Keys {
		if len(key) > fleetctrl.MaximumKeyLength {
			return fmt.Errorf("key %.16q...: %w", key, fleetctrl.ErrKeyTooLong)
		}
	}
	return nil
}

func (c *Config) Level() (fleetctrl.LogLevel, error) {
	switch c.LogLevel {
	case "", "error":
		return fleetctrl.LogLevelError, nil
	case "warn", "warning":
		return fleetctrl.LogLevelWarning, nil
	case "debug":
		return fleetctrl.LogLevelDebug, nil
	}
	return fleetctrl.LogLevelError, fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.LogLevel)
}

func (c *Config) Options() *fleetctrl.Options {
	entropy, _ := platform.ByName(c.Entropy)
	return &fleetctrl.Options{
		ID:                c.NodeID,
		Entropy:           entropy,
		PersistentKeys:    c.PersistentKeys,
		OwnershipTimeout:  c.OwnershipTimeout,
		OwnershipWindow:   c.OwnershipWindow,
		DiscoveryInterval: c.DiscoveryInterval,
	}
}
