package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	BaseURL  string `yaml:"baseURL"`
	CoreURL  string `yaml:"coreURL"`
	MydmsURL string `yaml:"mydmsURL"`
	Token    string `yaml:"token"`

	ReadLaterPath string `yaml:"readLaterPath"`
	PageSize      int    `yaml:"pageSize"`
	ShowAmount    bool   `yaml:"showAmount"`

	Debounce       string `yaml:"debounce"`
	RequestTimeout string `yaml:"requestTimeout"`
	UploadTimeout  string `yaml:"uploadTimeout"`

	Production      bool   `yaml:"production"`
	NoAccessPage    string `yaml:"noAccessPage"`
	NoAccessDevPage string `yaml:"noAccessDevPage"`

	CheckConcurrency   int      `yaml:"checkConcurrency"`
	CullExcludeDomains []string `yaml:"cullExcludeDomains"`

	LogLevel string `yaml:"logLevel"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "http://localhost:3000",
		ReadLaterPath:      "/Read-Later",
		PageSize:           20,
		Debounce:           "500ms",
		RequestTimeout:     "1m",
		UploadTimeout:      "10m",
		Production:         true,
		NoAccessPage:       "assets/noaccess.html",
		NoAccessDevPage:    "assets/noaccess.dev.html",
		CheckConcurrency:   10,
		CullExcludeDomains: []string{"github.com", "gitlab.com"},
		LogLevel:           "info",
	}
}

// LoadConfig reads config from the YAML file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: defaults are usable even if the file can't be written
			_ = SaveConfig(path, &config)
			config.applyEnvOverrides()
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	config.applyEnvOverrides()
	return &config, nil
}

// applyDefaults fills in fields missing from the file.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.ReadLaterPath == "" {
		c.ReadLaterPath = defaults.ReadLaterPath
	}
	if c.PageSize <= 0 {
		c.PageSize = defaults.PageSize
	}
	if c.Debounce == "" {
		c.Debounce = defaults.Debounce
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.UploadTimeout == "" {
		c.UploadTimeout = defaults.UploadTimeout
	}
	if c.NoAccessPage == "" {
		c.NoAccessPage = defaults.NoAccessPage
	}
	if c.NoAccessDevPage == "" {
		c.NoAccessDevPage = defaults.NoAccessDevPage
	}
	if c.CheckConcurrency <= 0 {
		c.CheckConcurrency = defaults.CheckConcurrency
	}
	if c.CullExcludeDomains == nil {
		c.CullExcludeDomains = defaults.CullExcludeDomains
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("BMR_BASE_URL"); url != "" {
		c.BaseURL = url
	}
	if token := os.Getenv("BMR_TOKEN"); token != "" {
		c.Token = token
	}
}

// NoAccessRedirect returns the page shown after an authentication failure.
func (c *Config) NoAccessRedirect() string {
	if c.Production {
		return c.NoAccessPage
	}
	return c.NoAccessDevPage
}

// GetDebounce returns the search input debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Debounce, 500*time.Millisecond)
}

// GetRequestTimeout returns the ceiling for ordinary requests.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, time.Minute)
}

// GetUploadTimeout returns the ceiling for long-running uploads.
func (c *Config) GetUploadTimeout() time.Duration {
	return parseDuration(c.UploadTimeout, 10*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// SaveConfig writes config to the YAML file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmr/config.yaml
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
