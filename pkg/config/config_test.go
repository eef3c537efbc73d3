package config

import (
	"testing"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_ENDPOINT", "")
	t.Setenv("ALCHEMY_API_KEY", "")
	t.Setenv("ETHEREUM_RPC_URL", "")
	t.Setenv("ARBITRUM_RPC_URL", "")
	t.Setenv("IGNORED_INTENT_HASHES", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIEndpoint, cfg.APIEndpoint)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DefaultMetricsPort, cfg.MetricsPort)
	assert.Equal(t, logger.InfoLevel, cfg.LoggerConfig.Level)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Empty(t, cfg.IgnoredIntentHashes)

	reactors := cfg.ReactorAddresses()
	assert.Equal(t, "0x00000011F84B9aa48e5f8aA8B9897600006289Be", reactors[1])
	assert.Equal(t, "0x1bd1aAdc9E230626C44a139d7E70d842749351eb", reactors[42161])
	assert.NotContains(t, reactors, 137)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_ENDPOINT", "http://localhost:9000/")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("ALCHEMY_API_KEY", "key123")
	t.Setenv("ARBITRUM_RPC_URL", "http://arb.local:8545")
	t.Setenv("POLYGON_REACTOR_ADDRESS", "0x2222222222222222222222222222222222222222")
	t.Setenv("IGNORED_INTENT_HASHES", " 0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA ,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.APIEndpoint)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://eth-mainnet.g.alchemy.com/v2/key123", cfg.Chains[1].RPCURL)
	assert.Equal(t, "http://arb.local:8545", cfg.Chains[42161].RPCURL)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", cfg.ReactorAddresses()[137])
	assert.Equal(t, []string{"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, cfg.IgnoredIntentHashes)
	assert.Equal(t, logger.DebugLevel, cfg.LoggerConfig.Level)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad endpoint", "API_ENDPOINT", "not a url"},
		{"bad timeout", "HTTP_TIMEOUT", "soon"},
		{"negative timeout", "HTTP_TIMEOUT", "-1s"},
		{"bad port", "METRICS_PORT", "http"},
		{"bad breaker flag", "CIRCUIT_BREAKER_ENABLED", "maybe"},
		{"bad breaker threshold", "CIRCUIT_BREAKER_THRESHOLD", "0"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad reactor", "BASE_REACTOR_ADDRESS", "0x1234"},
		{"bad ignored hash", "IGNORED_INTENT_HASHES", "0x1234"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestAlchemyURL(t *testing.T) {
	assert.Equal(t, "https://arb-mainnet.g.alchemy.com/v2/k", AlchemyURL(42161, "k"))
	assert.Equal(t, "", AlchemyURL(42161, ""))
	assert.Equal(t, "", AlchemyURL(999, "k"))
}
