// Package config loads the pdvd-notices YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ortelius/pdvd-notices/internal/datasource"
	"github.com/ortelius/pdvd-notices/internal/matcher"
	"github.com/ortelius/pdvd-notices/internal/services"
	"github.com/ortelius/pdvd-notices/storage"
	"github.com/ortelius/pdvd-notices/util"
	"gopkg.in/yaml.v2"
)

// Environment variables overriding the config file
const (
	EnvConfigFile = "PDVD_NOTICES_CONFIG"
	EnvEndpoint   = "PDVD_NOTICES_ENDPOINT"
	EnvCacheFile  = "PDVD_NOTICES_CACHE_FILE"
)

const defaultConfigName = ".pdvd-notices.yaml"

// Config represents the YAML structure
type Config struct {
	Endpoint         string        `yaml:"endpoint,omitempty"`
	CacheFile        string        `yaml:"cache_file,omitempty"`
	CacheTTL         time.Duration `yaml:"cache_ttl,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	Outdir           string        `yaml:"outdir,omitempty"`
	IssueURL         string        `yaml:"issue_url,omitempty"`
	FrameworkModules []string      `yaml:"framework_modules,omitempty"`
	Acknowledged     []int         `yaml:"acknowledged,omitempty"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Endpoint:         datasource.DefaultNoticesURL,
		CacheFile:        storage.DefaultCacheFile(),
		CacheTTL:         datasource.DefaultTTL,
		Timeout:          datasource.DefaultTimeout,
		Outdir:           "cdk.out",
		IssueURL:         services.DefaultIssueURL,
		FrameworkModules: append([]string{}, matcher.DefaultFrameworkModules...),
	}
}

// DefaultPath returns $PDVD_NOTICES_CONFIG or ~/.pdvd-notices.yaml
func DefaultPath() string {
	if p := util.GetEnvDefault(EnvConfigFile, ""); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(home, defaultConfigName)
}

// Load reads and parses the config file. A missing file yields the defaults;
// unset keys keep their default values and environment variables win over the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := readFile(path, cfg); err != nil {
		return nil, err
	}

	cfg.Endpoint = util.GetEnvDefault(EnvEndpoint, cfg.Endpoint)
	cfg.CacheFile = util.GetEnvDefault(EnvCacheFile, cfg.CacheFile)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads only what the file itself sets, without defaults or environment
// overrides. It is used to edit the file in place.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if err := readFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if util.IsEmpty(c.Endpoint) {
		return fmt.Errorf("endpoint is required")
	}
	if util.IsEmpty(c.CacheFile) {
		return fmt.Errorf("cache_file is required")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	for _, n := range c.Acknowledged {
		if n <= 0 {
			return fmt.Errorf("acknowledged issue numbers must be positive, got %d", n)
		}
	}
	return nil
}

// Acknowledge records issueNumber as acknowledged; it reports false if it already was
func (c *Config) Acknowledge(issueNumber int) bool {
	if util.ContainsInt(c.Acknowledged, issueNumber) {
		return false
	}
	c.Acknowledged = append(c.Acknowledged, issueNumber)
	return true
}

// Save writes the config file, creating its directory if needed
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
