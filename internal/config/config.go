package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".config/vornify"
	DefaultConfigFile = "config.yaml"

	defaultTimeoutSeconds = 30
)

// Environment variables that override file values
const (
	EnvBaseURL       = "VORNIFY_BASE_URL"
	EnvAPIKey        = "VORNIFY_API_KEY"
	EnvEmailAddress  = "EMAIL_ADDRESS"
	EnvEmailPassword = "EMAIL_PASSWORD"
	EnvPrintfulToken = "PRINTFUL_API_KEY"
)

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:3010",
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Database: DatabaseConfig{Name: "VornifyDB"},
		Video: VideoConfig{
			Collection:  "videos",
			DownloadDir: ".",
			Private:     true,
		},
		SMTP: SMTPConfig{
			Host:           "send.one.com",
			Port:           465,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Printful: PrintfulConfig{
			BaseURL:        "https://api.printful.com",
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from the specified path or default location.
// If path is empty, uses ~/.config/vornify/config.yaml (or config.json or
// config.toml) and falls back to the defaults when none exists. Supports .yaml,
// .toml and .json (comments and trailing commas allowed).
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		found, err := findDefaultConfig()
		if err != nil {
			return nil, err
		}
		if found == "" {
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid config: %w", err)
			}
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadConfigFromBytes(data, ext)
}

// LoadConfigFromBytes loads configuration from raw bytes on top of the
// defaults. format should be "yaml", "json" or "toml".
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	cfg := DefaultConfig()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
		if err := json.Unmarshal(std, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials and endpoints from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.API.APIKey = v
	}
	if v := os.Getenv(EnvEmailAddress); v != "" {
		c.SMTP.Username = v
		if c.SMTP.From == "" {
			c.SMTP.From = v
		}
	}
	if v := os.Getenv(EnvEmailPassword); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv(EnvPrintfulToken); v != "" {
		c.Printful.Token = v
	}
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

func findDefaultConfig() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	// Try YAML first, then JSON, then TOML
	for _, name := range []string{"config.yaml", "config.json", "config.toml"} {
		p := filepath.Join(home, DefaultConfigDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// APITimeout returns the HTTP request timeout
func (c *Config) APITimeout() time.Duration {
	return seconds(c.API.TimeoutSeconds)
}

// SMTPTimeout returns the SMTP session timeout
func (c *Config) SMTPTimeout() time.Duration {
	return seconds(c.SMTP.TimeoutSeconds)
}

// PrintfulTimeout returns the print-on-demand request timeout
func (c *Config) PrintfulTimeout() time.Duration {
	return seconds(c.Printful.TimeoutSeconds)
}

// Redacted returns a copy with secrets masked, for display
func (c *Config) Redacted() *Config {
	out := *c
	out.API.APIKey = mask(out.API.APIKey)
	out.SMTP.Password = mask(out.SMTP.Password)
	out.Printful.Token = mask(out.Printful.Token)
	return &out
}

// ToYAML renders the config as YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToTOML renders the config as TOML
func (c *Config) ToTOML() ([]byte, error) {
	return toml.Marshal(c)
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(s * float64(time.Second))
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
