// Package config defines the service configuration for Weaver, loaded from
// a YAML file with environment variables reserved for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full Weaver configuration
type Config struct {
	// LLM runtime configuration
	LLM LLMConfig `yaml:"llm" json:"llm"`

	// Policy is the tool policy gate configuration
	Policy PolicyConfig `yaml:"policy" json:"policy"`

	// Payments is the wallet provider configuration
	Payments PaymentsConfig `yaml:"payments" json:"payments"`

	// Server is the HTTP API configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// TurnTimeout bounds a single agent turn end to end
	TurnTimeout time.Duration `yaml:"turn_timeout" json:"turn_timeout"`
}

// LLMConfig defines the model runtime to call
type LLMConfig struct {
	Model   string `yaml:"model" json:"model"`
	BaseURL string `yaml:"base_url" json:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`
}

// PolicyConfig defines the tool policy gate
type PolicyConfig struct {
	DestinationAddress string  `yaml:"destination_address" json:"destination_address"`
	FixedAmount        float64 `yaml:"fixed_amount" json:"fixed_amount"`
	PaymentNamespace   string  `yaml:"payment_namespace" json:"payment_namespace"`
	FlightNamespace    string  `yaml:"flight_namespace" json:"flight_namespace"`
}

// PaymentMode selects the wallet implementation
type PaymentMode string

const (
	// PaymentModeDemo uses the in-process demo wallet
	PaymentModeDemo PaymentMode = "demo"
	// PaymentModeHTTP uses the wallet runtime's HTTP API
	PaymentModeHTTP PaymentMode = "http"
)

// PaymentsConfig defines the wallet provider
type PaymentsConfig struct {
	Mode     PaymentMode `yaml:"mode" json:"mode"`
	Endpoint string      `yaml:"endpoint" json:"endpoint"`

	// APIKeyEnv names the environment variable holding the wallet API key
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`
}

// ServerConfig defines the HTTP API surface
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`

	// RateLimitPerMinute caps chat requests per session per minute
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
}

// DefaultConfig returns the demo-mode defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:     "gpt-4o",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Policy: PolicyConfig{
			DestinationAddress: "0x1D46C9aAeBba92bEB46dBdDB4AB1a24cF3a98f21",
			FixedAmount:        0.05,
			PaymentNamespace:   "payman",
			FlightNamespace:    "flights",
		},
		Payments: PaymentsConfig{
			Mode: PaymentModeDemo,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			RateLimitPerMinute: 20,
		},
		TurnTimeout: 120 * time.Second,
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}

	if c.Policy.DestinationAddress == "" {
		return fmt.Errorf("policy destination_address is required")
	}
	if c.Policy.FixedAmount <= 0 {
		return fmt.Errorf("policy fixed_amount must be positive")
	}

	switch c.Payments.Mode {
	case PaymentModeDemo:
	case PaymentModeHTTP:
		if c.Payments.Endpoint == "" {
			return fmt.Errorf("payments endpoint is required in http mode")
		}
	default:
		return fmt.Errorf("invalid payments mode: %s (must be 'demo' or 'http')", c.Payments.Mode)
	}

	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate_limit_per_minute cannot be negative")
	}

	if c.TurnTimeout <= 0 {
		return fmt.Errorf("turn_timeout must be positive")
	}

	return nil
}

// APIKey resolves the LLM API key from the configured environment variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}
