package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for scanagram
type Config struct {
	// Instagram credentials and identity
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Request governor configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry strategy for failed remote calls
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Anti-fingerprinting settings
	Stealth StealthConfig `yaml:"stealth" json:"stealth"`

	// Data collection limits
	Limits LimitsConfig `yaml:"limits" json:"limits"`

	// Report output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// RateLimitConfig holds request governor configuration
type RateLimitConfig struct {
	RequestsPerHour    int           `yaml:"requests_per_hour" json:"requests_per_hour"`
	MinDelay           time.Duration `yaml:"min_delay" json:"min_delay"`
	BurstLimit         int           `yaml:"burst_limit" json:"burst_limit"`
	CooldownAfterBurst time.Duration `yaml:"cooldown_after_burst" json:"cooldown_after_burst"`
}

// RetryConfig holds the backoff policy for failed remote calls
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay       time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay        time.Duration `yaml:"max_delay" json:"max_delay"`
	ExponentialBase float64       `yaml:"exponential_base" json:"exponential_base"`
	JitterFraction  float64       `yaml:"jitter_fraction" json:"jitter_fraction"`
}

// StealthConfig holds anti-fingerprinting settings
type StealthConfig struct {
	UserAgents      []string `yaml:"user_agents" json:"user_agents"`
	RandomizeTiming bool     `yaml:"randomize_timing" json:"randomize_timing"`
}

// LimitsConfig bounds how much data a single investigation collects
type LimitsConfig struct {
	MaxPosts int `yaml:"max_posts" json:"max_posts"`
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	Format        string `yaml:"format" json:"format"` // json, markdown or both
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with conservative defaults.
// The rate limits stay well under Instagram's observed ~200 req/hour.
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		},
		RateLimit: RateLimitConfig{
			RequestsPerHour:    180,
			MinDelay:           2 * time.Second,
			BurstLimit:         10,
			CooldownAfterBurst: 60 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			BaseDelay:       5 * time.Second,
			MaxDelay:        300 * time.Second,
			ExponentialBase: 2.0,
			JitterFraction:  0.3,
		},
		Stealth: StealthConfig{
			UserAgents: []string{
				"Mozilla/5.0 (Linux; Android 13) AppleWebKit/537.36 Chrome/120.0.0.0 Mobile Safari/537.36",
				"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Safari/604.1",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			},
			RandomizeTiming: true,
		},
		Limits: LimitsConfig{
			MaxPosts: 50,
		},
		Output: OutputConfig{
			BaseDirectory: "./reports",
			Format:        "both",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if sessionID := os.Getenv("SCANAGRAM_SESSION_ID"); sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken := os.Getenv("SCANAGRAM_CSRF_TOKEN"); csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if userAgent := os.Getenv("SCANAGRAM_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}

	if rph := os.Getenv("SCANAGRAM_REQUESTS_PER_HOUR"); rph != "" {
		if val, err := strconv.Atoi(rph); err == nil && val > 0 {
			c.RateLimit.RequestsPerHour = val
		}
	}
	if maxPosts := os.Getenv("SCANAGRAM_MAX_POSTS"); maxPosts != "" {
		if val, err := strconv.Atoi(maxPosts); err == nil && val > 0 {
			c.Limits.MaxPosts = val
		}
	}

	if outputDir := os.Getenv("SCANAGRAM_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel := os.Getenv("SCANAGRAM_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".scanagram.yaml",
		".scanagram.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "scanagram", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "scanagram", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".scanagram.yaml"),
		filepath.Join(os.Getenv("HOME"), ".scanagram.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.RateLimit.RequestsPerHour <= 0 {
		errs = append(errs, errors.New("requests per hour must be positive"))
	}
	if c.RateLimit.MinDelay <= 0 {
		errs = append(errs, errors.New("minimum delay must be positive"))
	}
	if c.RateLimit.BurstLimit <= 0 {
		errs = append(errs, errors.New("burst limit must be positive"))
	}
	if c.RateLimit.CooldownAfterBurst <= 0 {
		errs = append(errs, errors.New("burst cooldown must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("base delay must be positive"))
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, errors.New("max delay must be at least the base delay"))
	}
	if c.Retry.ExponentialBase < 1 {
		errs = append(errs, errors.New("exponential base must be at least 1"))
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction > 1 {
		errs = append(errs, errors.New("jitter fraction must be between 0 and 1"))
	}

	if c.Limits.MaxPosts <= 0 {
		errs = append(errs, errors.New("max posts must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	validFormats := map[string]bool{
		"json": true, "markdown": true, "both": true,
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, errors.New("invalid output format"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if sessionID, ok := flags["session-id"].(string); ok && sessionID != "" {
		c.Instagram.SessionID = sessionID
	}
	if csrfToken, ok := flags["csrf-token"].(string); ok && csrfToken != "" {
		c.Instagram.CSRFToken = csrfToken
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if maxPosts, ok := flags["max-posts"].(int); ok && maxPosts > 0 {
		c.Limits.MaxPosts = maxPosts
	}
	if rph, ok := flags["requests-per-hour"].(int); ok && rph > 0 {
		c.RateLimit.RequestsPerHour = rph
	}
	if noHumanize, ok := flags["no-humanize"].(bool); ok && noHumanize {
		c.Stealth.RandomizeTiming = false
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".scanagram.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
