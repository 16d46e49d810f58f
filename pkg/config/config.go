// Package config loads the settings of a test run from yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roffe/j1939/pkg/ledger"
)

// Config represents the settings of one test run
type Config struct {
	// Vehicle is the simulated vehicle description
	Vehicle string `yaml:"vehicle"`
	// Attempts is how many times a destination specific request is sent
	// before the module is reported as not responding
	Attempts   int           `yaml:"attempts"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	// StepTimeout bounds a single step, zero disables it
	StepTimeout time.Duration `yaml:"step_timeout"`
	Colors      bool          `yaml:"colors"`
	Debug       bool          `yaml:"debug"`
	Interactive bool          `yaml:"interactive"`
	// Steps selects steps by "part.step" id, empty runs all
	Steps []string `yaml:"steps"`
	// FailOn is the least severe outcome that fails the run, FAIL or WARN
	FailOn string `yaml:"fail_on"`
}

// DefaultConfig returns the settings used when no configuration file is provided
func DefaultConfig() Config {
	return Config{
		Attempts:    3,
		RetryDelay:  200 * time.Millisecond,
		StepTimeout: 2 * time.Minute,
		Colors:      true,
		FailOn:      ledger.Fail.String(),
	}
}

// Load reads configuration from a yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(content)
}

func Parse(content []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills unset values with defaults and rejects invalid ones
func (c *Config) Validate() error {
	if c.Attempts == 0 {
		c.Attempts = DefaultConfig().Attempts
	}
	if c.Attempts < 0 {
		return fmt.Errorf("attempts must be positive, got %d", c.Attempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative, got %s", c.RetryDelay)
	}
	if c.FailOn == "" {
		c.FailOn = DefaultConfig().FailOn
	}
	o, err := ledger.ParseOutcome(c.FailOn)
	if err != nil {
		return fmt.Errorf("fail_on: %w", err)
	}
	if o == ledger.Pass {
		return errors.New("fail_on must be WARN or FAIL")
	}
	if c.StepTimeout < 0 {
		return fmt.Errorf("step_timeout must not be negative, got %s", c.StepTimeout)
	}
	return nil
}

// FailThreshold returns FailOn as an outcome, Fail when it is not valid
func (c Config) FailThreshold() ledger.Outcome {
	o, err := ledger.ParseOutcome(c.FailOn)
	if err != nil {
		return ledger.Fail
	}
	return o
}
