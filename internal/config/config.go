package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appDirName = "pile"

	// Environment overrides.
	EnvRemoteURL    = "PILE_REMOTE_URL"
	EnvRemoteKey    = "PILE_REMOTE_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvAPIKey       = "API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvLogLevel     = "PILE_LOG_LEVEL"
)

// Config holds application configuration.
type Config struct {
	Remote RemoteConfig `json:"remote"`
	Local  LocalConfig  `json:"local"`
	AI     AIConfig     `json:"ai"`
	Log    LogConfig    `json:"log"`
	Check  CheckConfig  `json:"check"`
}

// RemoteConfig points at the hosted bookmarks table.
// Both URL and Key must be set for the remote store to be used.
type RemoteConfig struct {
	URL   string `json:"url"`   // postgres://... or sqlite://path
	Key   string `json:"key"`   // credential injected into the DSN
	Table string `json:"table"` // defaults to "bookmarks"
}

// LocalConfig describes where the local blob lives.
type LocalConfig struct {
	Dir string    `json:"dir"`
	S3  *S3Config `json:"s3,omitempty"` // blob goes to an object store when set
}

// S3Config configures an S3 compatible bucket for the local blob.
type S3Config struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	Prefix    string `json:"prefix"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
}

// AIConfig configures tag/description suggestions.
type AIConfig struct {
	Provider        string   `json:"provider"` // "gemini" or "anthropic"
	Model           string   `json:"model"`
	APIKey          string   `json:"apiKey"`
	FetchTimeout    Duration `json:"fetchTimeout"`
	MaxContentChars int      `json:"maxContentChars"`
	CacheSize       int      `json:"cacheSize"`
	CacheTTL        Duration `json:"cacheTTL"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	Console    bool   `json:"console"`
}

// CheckConfig configures the dead link checker.
type CheckConfig struct {
	Concurrency    int      `json:"concurrency"`
	Timeout        Duration `json:"timeout"`
	ExcludeDomains []string `json:"excludeDomains"`
}

// Duration is a time.Duration that reads and writes as "15s".
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "15s" style strings or integer milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		d.Duration = parsed
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %w", err)
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

// Default returns the default configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		Remote: RemoteConfig{Table: "bookmarks"},
		Local:  LocalConfig{Dir: dir},
		AI: AIConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			FetchTimeout:    Duration{15 * time.Second},
			MaxContentChars: 15000,
			CacheSize:       256,
			CacheTTL:        Duration{time.Hour},
		},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "pile.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Check: CheckConfig{
			Concurrency:    10,
			Timeout:        Duration{10 * time.Second},
			ExcludeDomains: []string{"github.com", "gitlab.com"},
		},
	}
}

// Load reads config from the JSON file at path.
// Creates the file with defaults if it doesn't exist. Environment overrides
// are applied last.
func Load(path string) (*Config, error) {
	defaults := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		cfg := defaults
		// Non-fatal: defaults still apply when the file can't be written.
		_ = Save(path, &cfg)
		cfg.applyEnv()
		return &cfg, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults(defaults)
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes config to the JSON file.
// Creates the directory if it doesn't exist.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills fields missing from the file.
func (c *Config) applyDefaults(d Config) {
	if c.Remote.Table == "" {
		c.Remote.Table = d.Remote.Table
	}
	if c.Local.Dir == "" {
		c.Local.Dir = d.Local.Dir
	}
	if c.AI.Provider == "" {
		c.AI.Provider = d.AI.Provider
	}
	if c.AI.Model == "" {
		c.AI.Model = d.AI.Model
	}
	if c.AI.FetchTimeout.Duration <= 0 {
		c.AI.FetchTimeout = d.AI.FetchTimeout
	}
	if c.AI.MaxContentChars <= 0 {
		c.AI.MaxContentChars = d.AI.MaxContentChars
	}
	if c.AI.CacheSize <= 0 {
		c.AI.CacheSize = d.AI.CacheSize
	}
	if c.AI.CacheTTL.Duration <= 0 {
		c.AI.CacheTTL = d.AI.CacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Check.Concurrency <= 0 {
		c.Check.Concurrency = d.Check.Concurrency
	}
	if c.Check.Timeout.Duration <= 0 {
		c.Check.Timeout = d.Check.Timeout
	}
	if c.Check.ExcludeDomains == nil {
		c.Check.ExcludeDomains = d.Check.ExcludeDomains
	}
}

// applyEnv lets the environment override credentials.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRemoteURL); v != "" {
		c.Remote.URL = v
	}
	if v := os.Getenv(EnvRemoteKey); v != "" {
		c.Remote.Key = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}

	switch strings.ToLower(c.AI.Provider) {
	case "anthropic":
		if v := os.Getenv(EnvAnthropicKey); v != "" {
			c.AI.APIKey = v
		}
	default:
		if v := os.Getenv(EnvGeminiKey); v != "" {
			c.AI.APIKey = v
		} else if v := os.Getenv(EnvAPIKey); v != "" {
			c.AI.APIKey = v
		}
	}
}

// RemoteEnabled reports whether both remote values are present.
func (c *Config) RemoteEnabled() bool {
	return strings.TrimSpace(c.Remote.URL) != "" && strings.TrimSpace(c.Remote.Key) != ""
}

// AIEnabled reports whether a suggestion credential is present.
func (c *Config) AIEnabled() bool {
	return strings.TrimSpace(c.AI.APIKey) != ""
}

// Dir returns the config directory: $XDG_CONFIG_HOME/pile or ~/.config/pile.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appDirName), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
