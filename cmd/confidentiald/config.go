// config.go - Configuration management for the confidential transfer demo
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	// Crypto settings
	DecryptBound  uint64 `json:"decrypt_bound"`
	TokenDecimals uint8  `json:"token_decimals"`

	// Coordinator settings
	ComputeCeiling uint64 `json:"compute_ceiling"`
	ProofCost      uint64 `json:"proof_cost"`
	AutoCleanup    bool   `json:"auto_cleanup"`

	// Acceleration settings
	AccelMode          string `json:"accel_mode"` // auto | reference | accelerated
	PreferredBatchSize int    `json:"preferred_batch_size"`
	TelemetryWindow    int    `json:"telemetry_window"`

	// Demo settings
	NumRecipients  int    `json:"num_recipients"`
	InitialBalance uint64 `json:"initial_balance"`

	// Logging
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DecryptBound:       1 << 24,
		TokenDecimals:      6,
		ComputeCeiling:     1_400_000,
		ProofCost:          350_000,
		AutoCleanup:        true,
		AccelMode:          "auto",
		PreferredBatchSize: 20,
		TelemetryWindow:    1000,
		NumRecipients:      8,
		InitialBalance:     100_000,
		LogLevel:           "info",
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}

		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DecryptBound == 0 {
		return fmt.Errorf("decrypt_bound must be positive")
	}
	if c.ComputeCeiling == 0 {
		return fmt.Errorf("compute_ceiling must be positive")
	}
	if c.ProofCost == 0 {
		return fmt.Errorf("proof_cost must be positive")
	}
	if c.ProofCost > c.ComputeCeiling {
		return fmt.Errorf("proof_cost must not exceed compute_ceiling")
	}
	switch c.AccelMode {
	case "auto", "reference", "accelerated":
	default:
		return fmt.Errorf("accel_mode must be auto, reference or accelerated")
	}
	if c.NumRecipients <= 0 {
		return fmt.Errorf("num_recipients must be positive")
	}
	return nil
}
