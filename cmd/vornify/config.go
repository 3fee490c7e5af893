package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	vornifyConfig "github.com/yourusername/vornify-cli/internal/config"
	"github.com/yourusername/vornify-cli/internal/output"
)

// configCmd is the parent command for configuration management
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

// configShowFormat selects the rendering of "config show"
var configShowFormat string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		red := cfg.Redacted()
		if jsonOutput {
			configShowFormat = "json"
		}

		var data []byte
		var err error
		switch configShowFormat {
		case "json":
			return output.PrintJSON(os.Stdout, red)
		case "toml":
			data, err = red.ToTOML()
		case "yaml", "":
			data, err = red.ToYAML()
		default:
			return fmt.Errorf("unknown format %q: use yaml, json or toml", configShowFormat)
		}
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:         "validate [path]",
	Short:       "Validate a configuration file",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{skipConfigAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			path = vornifyConfig.GetConfigPath()
		}

		if _, err := vornifyConfig.LoadConfig(path); err != nil {
			return err
		}
		output.PrintSuccess(os.Stdout, "Config is valid: %s", path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create default configuration file",
	Annotations: map[string]string{skipConfigAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := vornifyConfig.GetConfigPath()

		// Check if file exists
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}

		data, err := vornifyConfig.DefaultConfig().ToYAML()
		if err != nil {
			return err
		}
		header := "# Vornify CLI configuration\n" +
			"# Secrets may be left out and supplied through the environment or a .env file:\n" +
			"#   VORNIFY_API_KEY, EMAIL_ADDRESS, EMAIL_PASSWORD, PRINTFUL_API_KEY\n\n"

		// Create directory
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		// Write file
		if err := os.WriteFile(path, append([]byte(header), data...), 0600); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		output.PrintSuccess(os.Stdout, "Created default config at: %s", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "Output format: yaml, json or toml")
}
