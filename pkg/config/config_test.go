package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "pricing", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, 100, cfg.Pricing.BinomialSteps)
	assert.Equal(t, 10000, cfg.Pricing.MonteCarloPaths)
	assert.Equal(t, uint64(42), cfg.Pricing.MonteCarloSeed)
	assert.Equal(t, 900, cfg.Pricing.CacheTTL)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.toml")
	content := `
service_name = "options-pricing"
environment = "prod"

[http]
port = 9000

[pricing]
binomial_steps = 250
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "options-pricing", cfg.ServiceName)
	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 250, cfg.Pricing.BinomialSteps)
	// 未覆盖的键保留默认值
	assert.Equal(t, 10000, cfg.Pricing.MonteCarloPaths)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"missing service name": func(c *Config) { c.ServiceName = "" },
		"bad http port":        func(c *Config) { c.HTTP.Port = 0 },
		"kafka without brokers": func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		},
		"bad binomial steps": func(c *Config) { c.Pricing.BinomialSteps = 0 },
		"bad mc paths":       func(c *Config) { c.Pricing.MonteCarloPaths = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
			require.NoError(t, err)
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
