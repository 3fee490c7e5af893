package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets the override variables for the duration of a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvAPIKey, EnvEmailAddress, EnvEmailPassword, EnvPrintfulToken} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("APITimeout = %v, want 30s", cfg.APITimeout())
	}
	if cfg.SMTP.Port != 465 {
		t.Errorf("SMTP.Port = %d, want 465", cfg.SMTP.Port)
	}
}

func TestLoadConfigFromBytesYAML(t *testing.T) {
	clearEnv(t)
	data := []byte(`
api:
  baseURL: https://api.vornify.se
  timeoutSeconds: 2.5
  paths:
    payment: /api/vornifypay
database:
  name: TestDB
smtp:
  host: smtp.example.com
logging:
  level: debug
`)
	cfg, err := LoadConfigFromBytes(data, "yaml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.vornify.se" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.APITimeout() != 2500*time.Millisecond {
		t.Errorf("APITimeout = %v, want 2.5s", cfg.APITimeout())
	}
	if cfg.Database.Name != "TestDB" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}
	// Unset keys keep their defaults
	if cfg.Video.Collection != "videos" || cfg.SMTP.Port != 465 {
		t.Errorf("defaults lost: collection=%q port=%d", cfg.Video.Collection, cfg.SMTP.Port)
	}
}

func TestLoadConfigFromBytesJSONWithComments(t *testing.T) {
	clearEnv(t)
	data := []byte(`{
		// local development server
		"api": {"baseURL": "http://127.0.0.1:3010", "timeoutSeconds": 5},
		"video": {"collection": "clips", "downloadDir": "/tmp/videos",},
	}`)
	cfg, err := LoadConfigFromBytes(data, "json")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:3010" || cfg.Video.Collection != "clips" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFromBytesErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		data   string
		format string
		msg    string
	}{
		{"unsupported format", "a = 1", "ini", "unsupported config format"},
		{"bad toml", "[api", "toml", "failed to parse TOML config"},
		{"bad yaml", "api: [", "yaml", "failed to parse YAML config"},
		{"bad json", "{", "json", "failed to parse JSON config"},
		{"bad scheme", "api:\n  baseURL: ftp://x\n", "yaml", "api.baseURL"},
		{"empty database", "database:\n  name: \"\"\n", "yaml", "database.name is required"},
		{"bad port", "smtp:\n  port: 70000\n", "yaml", "smtp.port"},
		{"bad path", "api:\n  paths:\n    db: api/db\n", "yaml", "api.paths.db"},
		{"bad level", "logging:\n  level: loud\n", "yaml", "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromBytes([]byte(tt.data), tt.format)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %v, want %q", err, tt.msg)
			}
		})
	}
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://api.example.com")
	t.Setenv(EnvEmailAddress, "noreply@example.com")
	t.Setenv(EnvEmailPassword, "secret")
	t.Setenv(EnvPrintfulToken, "pf-token")

	cfg, err := LoadConfigFromBytes([]byte("api:\n  baseURL: http://localhost:3010\n"), "yaml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.SMTP.Username != "noreply@example.com" || cfg.SMTP.From != "noreply@example.com" || cfg.SMTP.Password != "secret" {
		t.Errorf("smtp = %+v", cfg.SMTP)
	}
	if cfg.Printful.Token != "pf-token" {
		t.Errorf("Printful.Token = %q", cfg.Printful.Token)
	}

	red := cfg.Redacted()
	if red.SMTP.Password != "********" || red.Printful.Token != "********" {
		t.Errorf("Redacted() leaked secrets: %+v", red)
	}
	if cfg.SMTP.Password != "secret" {
		t.Error("Redacted() modified the original")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("database:\n  name: FileDB\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Database.Name != "FileDB" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadConfig of missing file returned nil error")
	}
}

func TestLoadConfigDefaultLocationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("EMAIL_PASSWORD=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvEmailPassword) })
	if got := os.Getenv(EnvEmailPassword); got != "from-dotenv" {
		t.Errorf("EMAIL_PASSWORD = %q", got)
	}
}

func TestToYAMLRoundTrip(t *testing.T) {
	clearEnv(t)
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFromBytes(out, "yaml")
	if err != nil {
		t.Fatalf("reloading generated YAML: %v", err)
	}
	if cfg.Database.Name != "VornifyDB" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}
}

func TestLoadConfigFromBytesTOML(t *testing.T) {
	clearEnv(t)
	data := []byte(`
[api]
baseURL = "https://api.vornify.se"
timeoutSeconds = 10

[video]
collection = "clips"
private = false

[smtp]
host = "smtp.example.com"
port = 2465
`)
	cfg, err := LoadConfigFromBytes(data, "toml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.vornify.se" || cfg.APITimeout() != 10*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Video.Collection != "clips" || cfg.Video.Private {
		t.Errorf("video = %+v", cfg.Video)
	}
	if cfg.SMTP.Port != 2465 || cfg.Database.Name != "VornifyDB" {
		t.Errorf("smtp port = %d, database = %q", cfg.SMTP.Port, cfg.Database.Name)
	}
}

func TestToTOMLRoundTrip(t *testing.T) {
	clearEnv(t)
	out, err := DefaultConfig().ToTOML()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFromBytes(out, "toml")
	if err != nil {
		t.Fatalf("reloading generated TOML: %v\n%s", err, out)
	}
	if cfg.SMTP.Host != "send.one.com" {
		t.Errorf("SMTP.Host = %q", cfg.SMTP.Host)
	}
}

func TestValidateBaseURLForms(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"localhost:3010", false},
		{"api.vornify.se", false},
		{"https://api.vornify.se/v1", false},
		{"ftp://api.vornify.se", true},
		{"http://", true},
		{"  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.API.BaseURL = tt.url
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
