package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// YAML encodes durations as human-readable strings ("2s", "5m") rather
// than raw nanosecond integers, so the duration-bearing sections carry
// custom marshaling. Absent keys keep whatever value the struct already
// holds, preserving defaults on partial config files.

func (r RateLimitConfig) MarshalYAML() (interface{}, error) {
	return struct {
		RequestsPerHour    int    `yaml:"requests_per_hour"`
		MinDelay           string `yaml:"min_delay"`
		BurstLimit         int    `yaml:"burst_limit"`
		CooldownAfterBurst string `yaml:"cooldown_after_burst"`
	}{
		RequestsPerHour:    r.RequestsPerHour,
		MinDelay:           r.MinDelay.String(),
		BurstLimit:         r.BurstLimit,
		CooldownAfterBurst: r.CooldownAfterBurst.String(),
	}, nil
}

func (r *RateLimitConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		RequestsPerHour    int    `yaml:"requests_per_hour"`
		MinDelay           string `yaml:"min_delay"`
		BurstLimit         int    `yaml:"burst_limit"`
		CooldownAfterBurst string `yaml:"cooldown_after_burst"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.RequestsPerHour != 0 {
		r.RequestsPerHour = raw.RequestsPerHour
	}
	if raw.BurstLimit != 0 {
		r.BurstLimit = raw.BurstLimit
	}
	if raw.MinDelay != "" {
		d, err := time.ParseDuration(raw.MinDelay)
		if err != nil {
			return fmt.Errorf("invalid min_delay: %w", err)
		}
		r.MinDelay = d
	}
	if raw.CooldownAfterBurst != "" {
		d, err := time.ParseDuration(raw.CooldownAfterBurst)
		if err != nil {
			return fmt.Errorf("invalid cooldown_after_burst: %w", err)
		}
		r.CooldownAfterBurst = d
	}
	return nil
}

func (r RetryConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MaxAttempts     int     `yaml:"max_attempts"`
		BaseDelay       string  `yaml:"base_delay"`
		MaxDelay        string  `yaml:"max_delay"`
		ExponentialBase float64 `yaml:"exponential_base"`
		JitterFraction  float64 `yaml:"jitter_fraction"`
	}{
		MaxAttempts:     r.MaxAttempts,
		BaseDelay:       r.BaseDelay.String(),
		MaxDelay:        r.MaxDelay.String(),
		ExponentialBase: r.ExponentialBase,
		JitterFraction:  r.JitterFraction,
	}, nil
}

func (r *RetryConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxAttempts     int     `yaml:"max_attempts"`
		BaseDelay       string  `yaml:"base_delay"`
		MaxDelay        string  `yaml:"max_delay"`
		ExponentialBase float64 `yaml:"exponential_base"`
		JitterFraction  float64 `yaml:"jitter_fraction"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.MaxAttempts != 0 {
		r.MaxAttempts = raw.MaxAttempts
	}
	if raw.ExponentialBase != 0 {
		r.ExponentialBase = raw.ExponentialBase
	}
	if raw.JitterFraction != 0 {
		r.JitterFraction = raw.JitterFraction
	}
	if raw.BaseDelay != "" {
		d, err := time.ParseDuration(raw.BaseDelay)
		if err != nil {
			return fmt.Errorf("invalid base_delay: %w", err)
		}
		r.BaseDelay = d
	}
	if raw.MaxDelay != "" {
		d, err := time.ParseDuration(raw.MaxDelay)
		if err != nil {
			return fmt.Errorf("invalid max_delay: %w", err)
		}
		r.MaxDelay = d
	}
	return nil
}
