package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/speedrun-hq/intentscope/pkg/chains"
	"github.com/speedrun-hq/intentscope/pkg/logger"
)

// Config holds the configuration for the intent service
type Config struct {
	APIEndpoint         string
	HTTPTimeout         time.Duration
	MetricsPort         string
	MetricsAPIKey       string
	AlchemyAPIKey       string
	Chains              map[int]ChainConfig
	IgnoredIntentHashes []string
	FillEventCacheTTL   time.Duration
	CircuitBreaker      CircuitBreakerConfig
	LoggerConfig        LoggerConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// ChainConfig holds the configuration for a specific blockchain
type ChainConfig struct {
	ChainID        int
	Name           string
	RPCURL         string
	ReactorAddress string
}

// ReactorAddresses returns the Dutch_V2 reactor table keyed by chain ID
func (c *Config) ReactorAddresses() map[int]string {
	reactors := make(map[int]string)
	for chainID, chainConfig := range c.Chains {
		if chainConfig.ReactorAddress != "" {
			reactors[chainID] = chainConfig.ReactorAddress
		}
	}
	return reactors
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	apiEndpoint, err := GetEnvAPIEndpoint()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := GetEnvHTTPTimeout()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	cacheTTL, err := GetEnvFillEventCacheTTL()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	alchemyAPIKey := GetEnvAlchemyAPIKey()
	chainConfigs := make(map[int]ChainConfig)
	for _, chainConfig := range GetEnvChainConfigs(alchemyAPIKey) {
		chainConfigs[chainConfig.ChainID] = chainConfig
	}

	cfg := &Config{
		APIEndpoint:         apiEndpoint,
		HTTPTimeout:         httpTimeout,
		MetricsPort:         metricsPort,
		MetricsAPIKey:       GetEnvMetricsAPIKey(),
		AlchemyAPIKey:       alchemyAPIKey,
		Chains:              chainConfigs,
		IgnoredIntentHashes: GetEnvIgnoredIntentHashes(),
		FillEventCacheTTL:   cacheTTL,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Chains) == 0 {
		return fmt.Errorf("at least one chain configuration is required")
	}
	for chainID, chainConfig := range cfg.Chains {
		if chainConfig.ReactorAddress != "" && !common.IsHexAddress(chainConfig.ReactorAddress) {
			return fmt.Errorf("invalid reactor address for chain %d: %s", chainID, chainConfig.ReactorAddress)
		}
	}
	for _, hash := range cfg.IgnoredIntentHashes {
		if len(hash) != 66 {
			return fmt.Errorf("invalid ignored intent hash: %s", hash)
		}
	}
	return nil
}

// chainEnvPrefix returns the environment variable prefix for a chain, e.g. ARBITRUM
func chainEnvPrefix(chainID int) string {
	return chains.GetChainName(chainID)
}
