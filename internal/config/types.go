package config

// Config is the root configuration structure
type Config struct {
	API      APIConfig      `yaml:"api" json:"api" toml:"api"`
	Database DatabaseConfig `yaml:"database" json:"database" toml:"database"`
	Video    VideoConfig    `yaml:"video" json:"video" toml:"video"`
	SMTP     SMTPConfig     `yaml:"smtp" json:"smtp" toml:"smtp"`
	Printful PrintfulConfig `yaml:"printful" json:"printful" toml:"printful"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging" toml:"logging"`
}

// APIConfig points at the Vornify HTTP API
type APIConfig struct {
	BaseURL        string      `yaml:"baseURL" json:"baseURL" toml:"baseURL"`
	TimeoutSeconds float64     `yaml:"timeoutSeconds" json:"timeoutSeconds" toml:"timeoutSeconds"`
	UserAgent      string      `yaml:"userAgent,omitempty" json:"userAgent,omitempty" toml:"userAgent,omitempty"`
	APIKey         string      `yaml:"apiKey,omitempty" json:"apiKey,omitempty" toml:"apiKey,omitempty"`
	Paths          PathsConfig `yaml:"paths,omitempty" json:"paths,omitempty" toml:"paths,omitempty"`
}

// PathsConfig overrides endpoint paths; empty values use the defaults
type PathsConfig struct {
	DB      string `yaml:"db,omitempty" json:"db,omitempty" toml:"db,omitempty"`
	Storage string `yaml:"storage,omitempty" json:"storage,omitempty" toml:"storage,omitempty"`
	Payment string `yaml:"payment,omitempty" json:"payment,omitempty" toml:"payment,omitempty"`
	Email   string `yaml:"email,omitempty" json:"email,omitempty" toml:"email,omitempty"`
}

// DatabaseConfig names the default database
type DatabaseConfig struct {
	Name string `yaml:"name" json:"name" toml:"name"`
}

// VideoConfig controls video transfer
type VideoConfig struct {
	Collection  string `yaml:"collection" json:"collection" toml:"collection"`
	DownloadDir string `yaml:"downloadDir" json:"downloadDir" toml:"downloadDir"`
	// Private marks uploads private unless overridden on the command line
	Private bool `yaml:"private" json:"private" toml:"private"`
}

// SMTPConfig holds the direct SMTP credentials
type SMTPConfig struct {
	Host           string  `yaml:"host" json:"host" toml:"host"`
	Port           int     `yaml:"port" json:"port" toml:"port"`
	Username       string  `yaml:"username,omitempty" json:"username,omitempty" toml:"username,omitempty"`
	Password       string  `yaml:"password,omitempty" json:"password,omitempty" toml:"password,omitempty"`
	From           string  `yaml:"from,omitempty" json:"from,omitempty" toml:"from,omitempty"`
	TimeoutSeconds float64 `yaml:"timeoutSeconds" json:"timeoutSeconds" toml:"timeoutSeconds"`
}

// PrintfulConfig points at the print-on-demand API
type PrintfulConfig struct {
	BaseURL        string  `yaml:"baseURL" json:"baseURL" toml:"baseURL"`
	Token          string  `yaml:"token,omitempty" json:"token,omitempty" toml:"token,omitempty"`
	TimeoutSeconds float64 `yaml:"timeoutSeconds" json:"timeoutSeconds" toml:"timeoutSeconds"`
}

// LoggingConfig controls the log file
type LoggingConfig struct {
	File  string `yaml:"file,omitempty" json:"file,omitempty" toml:"file,omitempty"`
	Level string `yaml:"level" json:"level" toml:"level"`
}
