package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"scanagram/pkg/config"
	"scanagram/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Scanagram configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'scanagram.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Sensitive values like credentials are masked.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks YAML syntax, value types and ranges.`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# Scanagram Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with SCANAGRAM_
# For example: SCANAGRAM_SESSION_ID, SCANAGRAM_CSRF_TOKEN

# Instagram credentials
instagram:
  # Session ID from Instagram cookies
  # Prefer 'scanagram auth login' over storing credentials here
  session_id: ""

  # CSRF token from Instagram cookies
  csrf_token: ""

  # User agent string (optional, leave empty for default)
  user_agent: ""

# Request governor configuration
rate_limit:
  # Rolling hourly request budget
  requests_per_hour: 180

  # Minimum spacing between consecutive requests
  min_delay: 2s

  # Requests within a 10 second window that trigger a cooldown
  burst_limit: 10

  # How long to pause after a burst
  cooldown_after_burst: 60s

# Retry configuration for failed requests
retry:
  # Maximum number of attempts per request
  max_attempts: 3

  # Initial backoff duration
  base_delay: 5s

  # Maximum backoff duration
  max_delay: 300s

  # Backoff multiplier between attempts
  exponential_base: 2.0

  # Random jitter applied to each delay (fraction of the delay)
  jitter_fraction: 0.3

# Anti-fingerprinting settings
stealth:
  # Insert small random pauses between requests
  randomize_timing: true

# Data collection limits
limits:
  # Maximum posts analyzed per investigation
  max_posts: 50

# Report output settings
output:
  # Directory for generated reports
  base_directory: "./reports"

  # Report format: json, markdown or both
  format: "both"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional, empty logs to stderr)
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "scanagram.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'scanagram auth login' to store your Instagram credentials")
	fmt.Println("2. Run 'scanagram config validate' to check the configuration")
	fmt.Println("3. Start analyzing with 'scanagram analyze <username>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	displayCfg.Instagram.SessionID = maskSecret(displayCfg.Instagram.SessionID)
	displayCfg.Instagram.CSRFToken = maskSecret(displayCfg.Instagram.CSRFToken)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "scanagram.yaml"
	}

	if _, err := os.Stat(configPath); err != nil {
		ui.PrintError("Configuration file not found", configPath)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configPath); err != nil {
		ui.PrintError("Configuration file is invalid", err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid: " + configPath)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "***"
}
