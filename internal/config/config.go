// Package config contains configuration for the scene host and client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	kdl "github.com/sblinch/kdl-go"
)

// ConfigFileName is the name of the scenemcp configuration file.
const ConfigFileName = ".scenemcp.kdl"

// Config is the resolved configuration after file and environment
// merging.
type Config struct {
	// Host is the scene host bind/connect address.
	Host string
	// Port is the scene host TCP port.
	Port int
	// Timeout is the client receive timeout per request.
	Timeout time.Duration
	// Features maps feature names to their enabled state. Gated
	// commands consult this at dispatch time.
	Features map[string]bool
	// SceneName names the host's scene.
	SceneName string
	// DemoScene seeds the host with starter content.
	DemoScene bool
}

// KDLConfig represents the KDL configuration structure.
// Uses kdl struct tags for unmarshaling.
type KDLConfig struct {
	Host      string          `kdl:"host"`
	Port      int             `kdl:"port"`
	Timeout   int             `kdl:"timeout"`
	Features  map[string]bool `kdl:"features"`
	SceneName string          `kdl:"scene-name"`
	DemoScene *bool           `kdl:"demo-scene"`
}

// envConfig holds environment variable overrides. They apply on top of
// file configuration.
type envConfig struct {
	Host     string   `env:"SCENEMCP_HOST"`
	Port     int      `env:"SCENEMCP_PORT"`
	Timeout  int      `env:"SCENEMCP_TIMEOUT"`
	Features []string `env:"SCENEMCP_FEATURES" envSeparator:","`
}

// DefaultConfig returns a config with sensible defaults: loopback and
// the well-known port, every feature on.
func DefaultConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    9876,
		Timeout: 15 * time.Second,
		Features: map[string]bool{
			"assets": true,
		},
		SceneName: "Scene",
		DemoScene: true,
	}
}

// Load resolves configuration for a directory: defaults, then the
// nearest .scenemcp.kdl walking up from dir, then environment
// variables.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()

	if path := FindConfigFile(dir); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := cfg.mergeKDL(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile looks for .scenemcp.kdl in dir and its parents.
// Returns "" if none exists.
func FindConfigFile(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ParseConfig parses KDL configuration data on top of defaults.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.mergeKDL([]byte(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeKDL(data []byte) error {
	var kdlCfg KDLConfig
	if err := kdl.Unmarshal(data, &kdlCfg); err != nil {
		return err
	}

	if kdlCfg.Host != "" {
		c.Host = kdlCfg.Host
	}
	if kdlCfg.Port > 0 {
		c.Port = kdlCfg.Port
	}
	if kdlCfg.Timeout > 0 {
		c.Timeout = time.Duration(kdlCfg.Timeout) * time.Second
	}
	// An explicit features block replaces the default set: features
	// not named are off.
	if kdlCfg.Features != nil {
		c.Features = kdlCfg.Features
	}
	if kdlCfg.SceneName != "" {
		c.SceneName = kdlCfg.SceneName
	}
	if kdlCfg.DemoScene != nil {
		c.DemoScene = *kdlCfg.DemoScene
	}

	return nil
}

func (c *Config) mergeEnv() error {
	var overrides envConfig
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if overrides.Host != "" {
		c.Host = overrides.Host
	}
	if overrides.Port > 0 {
		c.Port = overrides.Port
	}
	if overrides.Timeout > 0 {
		c.Timeout = time.Duration(overrides.Timeout) * time.Second
	}
	if overrides.Features != nil {
		c.Features = make(map[string]bool, len(overrides.Features))
		for _, name := range overrides.Features {
			if name != "" {
				c.Features[name] = true
			}
		}
	}
	return nil
}

// FeatureEnabled reports whether a named feature is on.
func (c *Config) FeatureEnabled(name string) bool {
	return c.Features[name]
}

// Gate returns a dispatch-time gate for a named feature.
func (c *Config) Gate(name string) func() bool {
	return func() bool { return c.FeatureEnabled(name) }
}

// Address formats the host:port pair.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
