package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"

	"github.com/yourusername/vornify-cli/internal/client"
	vornifyConfig "github.com/yourusername/vornify-cli/internal/config"
	"github.com/yourusername/vornify-cli/internal/logging"
	"github.com/yourusername/vornify-cli/internal/models"
	"github.com/yourusername/vornify-cli/internal/output"
)

var (
	configPath string
	baseURL    string
	timeout    time.Duration
	jsonOutput bool
	noColor    bool
	debugMode  bool

	// cfg is loaded once before any command runs
	cfg *vornifyConfig.Config
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "vornify",
	Short: "Vornify CLI - client for the Vornify database, payment and email APIs",
	Long: `Vornify is a command-line client for the Vornify API.

It sends database commands, transfers videos as chunked data URIs, creates
payments and subscriptions, and sends email either through the API or
directly over SMTP.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		if err := vornifyConfig.LoadDotEnv(); err != nil {
			return err
		}

		if skipsConfigLoad(cmd) {
			cfg = vornifyConfig.DefaultConfig()
		} else {
			var err error
			cfg, err = vornifyConfig.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}
		if baseURL != "" {
			cfg.API.BaseURL = baseURL
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid --base-url: %w", err)
			}
		}

		if err := logging.Init(cfg.Logging.File, cfg.Logging.Level); err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		}
		if debugMode {
			logging.SetDebug(true)
		}
		logging.Debug().Str("cmd", cmd.CommandPath()).Str("base_url", cfg.API.BaseURL).Msg("starting")
		return nil
	},
}

// skipConfigAnnotation marks commands that load configuration themselves
const skipConfigAnnotation = "vornify/skip-config"

// skipsConfigLoad reports whether cmd handles its own config loading, so a
// broken default config file does not block it.
func skipsConfigLoad(cmd *cobra.Command) bool {
	_, ok := cmd.Annotations[skipConfigAnnotation]
	return ok
}

// pingCmd tests server connectivity
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connection to the Vornify API",
	Long:  `Calls the storage test route to check that the API is reachable and measure response time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.Ping(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}

		if jsonOutput {
			return output.PrintJSON(os.Stdout, resp)
		}

		output.PrintSuccess(os.Stdout, "API reachable at %s", c.BaseURL())
		fmt.Printf("Response time: %v\n", elapsed.Round(time.Millisecond))
		if resp.Message != "" {
			output.PrintKeyValue(os.Stdout, "Message", resp.Message)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/vornify/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(storageCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(emailCmd)
	rootCmd.AddCommand(mailCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	defer logging.Close()

	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Str("kind", models.KindOf(err).String()).Msg("command failed")
		output.PrintError(os.Stderr, err.Error())
		logging.Close()
		os.Exit(1)
	}
}

// Helper functions

// newAPIClient builds a client from the loaded config and global flags
func newAPIClient() (*client.Client, error) {
	t := cfg.APITimeout()
	if timeout > 0 {
		t = timeout
	}
	paths := cfg.API.Paths
	return client.NewClient(cfg.API.BaseURL,
		client.WithTimeout(t),
		client.WithLogger(logging.Logger),
		client.WithUserAgent(cfg.API.UserAgent),
		client.WithAPIKey(cfg.API.APIKey),
		client.WithPaths(client.Paths{
			DB:      paths.DB,
			Storage: paths.Storage,
			Payment: paths.Payment,
			Email:   paths.Email,
		}),
	)
}

// printResult prints a response envelope and turns a failure outcome into an error
func printResult(command string, resp *models.ResponseEnvelope) error {
	if jsonOutput {
		if err := output.PrintJSON(os.Stdout, resp); err != nil {
			return err
		}
	} else if resp.OK() {
		if err := output.PrintEnvelope(os.Stdout, resp); err != nil {
			return err
		}
	}
	if resp.IsError() {
		return &client.CommandError{Command: command, Response: resp}
	}
	return nil
}

// parseJSONObject parses an inline JSON object or @file reference; comments
// and trailing commas are accepted
func parseJSONObject(arg string) (map[string]interface{}, error) {
	if arg == "" {
		return map[string]interface{}{}, nil
	}
	data := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg[1:], err)
		}
		data = b
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(std, &obj); err != nil {
		return nil, fmt.Errorf("data must be a JSON object: %w", err)
	}
	return obj, nil
}

// readTextArg returns text, or the contents of file when text is empty
func readTextArg(text, file, name string) (string, error) {
	if text != "" && file != "" {
		return "", fmt.Errorf("use either --%s or --%s-file", name, name)
	}
	if file == "" {
		return text, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(b), nil
}
