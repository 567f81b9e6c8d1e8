package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Listen     string     `yaml:"listen"`
	Storage    Storage    `yaml:"storage"`
	Encryption Encryption `yaml:"encryption"`
	Log        Log        `yaml:"log,omitempty"`
}

// Storage configures the persistent store.
type Storage struct {
	Dir string `yaml:"dir"`
}

// Encryption configures the secret-key codec. Mode "local" uses the
// hex-encoded AES key; mode "kms" delegates to the configured KMS key.
type Encryption struct {
	Mode     string `yaml:"mode"`
	Key      string `yaml:"key,omitempty"`
	KMSKeyID string `yaml:"kms_key_id,omitempty"`
	Region   string `yaml:"kms_region,omitempty"`
}

// Log configures logging behavior.
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage dir is required")
	}
	return c.Encryption.Validate()
}

// Validate checks the encryption section.
func (e *Encryption) Validate() error {
	switch e.Mode {
	case "local":
		key, err := hex.DecodeString(e.Key)
		if err != nil {
			return fmt.Errorf("encryption key must be hex encoded: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
		}
	case "kms":
		if e.KMSKeyID == "" {
			return fmt.Errorf("kms_key_id is required in kms mode")
		}
		if e.Region == "" {
			return fmt.Errorf("kms_region is required in kms mode")
		}
	default:
		return fmt.Errorf("encryption mode must be local or kms, got %q", e.Mode)
	}
	return nil
}

// KeyBytes returns the decoded local AES key.
func (e *Encryption) KeyBytes() []byte {
	key, _ := hex.DecodeString(e.Key)
	return key
}
