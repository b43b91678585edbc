package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PaymentModeDemo, cfg.Payments.Mode)
	assert.Equal(t, 0.05, cfg.Policy.FixedAmount)
	assert.Equal(t, 120*time.Second, cfg.TurnTimeout)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weaver.yaml")
	content := `
llm:
  model: gpt-4o-mini
  base_url: http://localhost:8081/v1
policy:
  destination_address: "0xoverride"
  fixed_amount: 0.05
server:
  addr: ":9999"
turn_timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:8081/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "0xoverride", cfg.Policy.DestinationAddress)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout)
	// Untouched sections keep their defaults.
	assert.Equal(t, PaymentModeDemo, cfg.Payments.Mode)
	assert.Equal(t, "payman", cfg.Policy.PaymentNamespace)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing model", func(c *Config) { c.LLM.Model = "" }},
		{"missing destination", func(c *Config) { c.Policy.DestinationAddress = "" }},
		{"zero amount", func(c *Config) { c.Policy.FixedAmount = 0 }},
		{"http mode without endpoint", func(c *Config) { c.Payments.Mode = PaymentModeHTTP }},
		{"unknown payment mode", func(c *Config) { c.Payments.Mode = "sandbox" }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitPerMinute = -1 }},
		{"zero turn timeout", func(c *Config) { c.TurnTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAPIKeyResolvesFromEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKeyEnv = "WEAVER_TEST_KEY"
	t.Setenv("WEAVER_TEST_KEY", "sk-test")

	assert.Equal(t, "sk-test", cfg.APIKey())

	cfg.LLM.APIKeyEnv = ""
	assert.Empty(t, cfg.APIKey())
}
