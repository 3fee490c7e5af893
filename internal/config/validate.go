package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"":      true,
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := validateURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.baseURL: %w", err)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeoutSeconds must not be negative")
	}
	for name, p := range map[string]string{
		"db":      c.API.Paths.DB,
		"storage": c.API.Paths.Storage,
		"payment": c.API.Paths.Payment,
		"email":   c.API.Paths.Email,
	} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("api.paths.%s must start with /", name)
		}
	}

	if strings.TrimSpace(c.Database.Name) == "" {
		return fmt.Errorf("database.name is required")
	}
	if strings.TrimSpace(c.Video.Collection) == "" {
		return fmt.Errorf("video.collection is required")
	}

	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port %d out of range", c.SMTP.Port)
	}
	if c.SMTP.TimeoutSeconds < 0 {
		return fmt.Errorf("smtp.timeoutSeconds must not be negative")
	}

	if c.Printful.BaseURL != "" {
		if err := validateURL(c.Printful.BaseURL); err != nil {
			return fmt.Errorf("printful.baseURL: %w", err)
		}
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}

	return nil
}

// validateURL accepts the same forms the API client does: a missing scheme
// means http.
func validateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("missing URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
