package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/chains"
	"github.com/speedrun-hq/intentscope/pkg/logger"
)

const (
	// DefaultAPIEndpoint defines the default endpoint of the order-book service
	DefaultAPIEndpoint = "https://api.uniswap.org"

	// DefaultHTTPTimeout defines the default order-book request timeout in seconds
	DefaultHTTPTimeout = 10

	// DefaultMetricsPort defines the default port for the HTTP server
	DefaultMetricsPort = "8080"

	// DefaultFillEventCacheTTL defines how long fill lookups are cached, in seconds
	DefaultFillEventCacheTTL = 3600

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker
	DefaultCircuitBreakerWindow = 60

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker
	DefaultCircuitBreakerReset = 30

	// DefaultLogLevel defines the default log level
	DefaultLogLevel = "info"

	alchemyURLFormat = "https://%s.g.alchemy.com/v2/%s"
)

// GetEnvAPIEndpoint returns the order-book endpoint from environment variables
func GetEnvAPIEndpoint() (string, error) {
	apiEndpoint := os.Getenv("API_ENDPOINT")
	if apiEndpoint == "" {
		return DefaultAPIEndpoint, nil
	}

	// Validate URL format
	if _, err := url.ParseRequestURI(apiEndpoint); err != nil {
		return "", fmt.Errorf("invalid API_ENDPOINT value: %s, must be a valid URL", apiEndpoint)
	}
	return strings.TrimRight(apiEndpoint, "/"), nil
}

// GetEnvHTTPTimeout returns the order-book request timeout from environment variables
func GetEnvHTTPTimeout() (time.Duration, error) {
	timeout := os.Getenv("HTTP_TIMEOUT")
	if timeout == "" {
		return DefaultHTTPTimeout * time.Second, nil
	}

	parsed, err := time.ParseDuration(timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid HTTP_TIMEOUT value: %s, must be a valid duration string", timeout)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("HTTP_TIMEOUT must be greater than 0")
	}
	return parsed, nil
}

// GetEnvMetricsPort returns the HTTP server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvMetricsAPIKey returns the bearer key protecting /metrics, empty disables auth
func GetEnvMetricsAPIKey() string {
	return os.Getenv("METRICS_API_KEY")
}

// GetEnvAlchemyAPIKey returns the Alchemy API key used to build default RPC URLs
func GetEnvAlchemyAPIKey() string {
	return os.Getenv("ALCHEMY_API_KEY")
}

// GetEnvFillEventCacheTTL returns the fill event cache TTL from environment variables
func GetEnvFillEventCacheTTL() (time.Duration, error) {
	ttl := os.Getenv("FILL_EVENT_CACHE_TTL")
	if ttl == "" {
		return DefaultFillEventCacheTTL * time.Second, nil
	}

	parsed, err := time.ParseDuration(ttl)
	if err != nil {
		return 0, fmt.Errorf("invalid FILL_EVENT_CACHE_TTL value: %s, must be a valid duration string", ttl)
	}
	return parsed, nil
}

// GetEnvIgnoredIntentHashes returns the denylisted order hashes, lowercased
func GetEnvIgnoredIntentHashes() []string {
	raw := os.Getenv("IGNORED_INTENT_HASHES")
	if raw == "" {
		return nil
	}

	var hashes []string
	for _, hash := range strings.Split(raw, ",") {
		hash = strings.ToLower(strings.TrimSpace(hash))
		if hash != "" {
			hashes = append(hashes, hash)
		}
	}
	return hashes
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker window duration from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return DefaultCircuitBreakerWindow * time.Second, nil
	}

	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a valid duration string", window)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return DefaultCircuitBreakerReset * time.Second, nil
	}

	parsed, err := time.ParseDuration(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a valid duration string", reset)
	}
	return parsed, nil
}

// GetEnvLogLevel returns the log level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = DefaultLogLevel
	}

	parsed, err := logger.ParseLevel(level)
	if err != nil {
		return logger.InfoLevel, fmt.Errorf("invalid LOG_LEVEL value: %s, must be debug, info, notice or error", level)
	}
	return parsed, nil
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}

	parsed, err := strconv.ParseBool(coloring)
	if err != nil {
		return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
	}
	return parsed, nil
}

// GetEnvChainConfigs returns the configuration of every supported chain.
// RPC URLs come from <CHAIN>_RPC_URL, falling back to Alchemy when a key is set.
// Reactor addresses come from <CHAIN>_REACTOR_ADDRESS, falling back to the built-in table.
func GetEnvChainConfigs(alchemyAPIKey string) []ChainConfig {
	defaultReactors := chains.DefaultV2ReactorAddresses()

	chainConfigs := make([]ChainConfig, 0, len(chains.ChainList))
	for _, chainID := range chains.ChainList {
		prefix := chainEnvPrefix(chainID)

		rpc := os.Getenv(prefix + "_RPC_URL")
		if rpc == "" && alchemyAPIKey != "" {
			rpc = AlchemyURL(chainID, alchemyAPIKey)
		}

		reactor := os.Getenv(prefix + "_REACTOR_ADDRESS")
		if reactor == "" {
			reactor = defaultReactors[chainID]
		}

		chainConfigs = append(chainConfigs, ChainConfig{
			ChainID:        chainID,
			Name:           prefix,
			RPCURL:         rpc,
			ReactorAddress: reactor,
		})
	}
	return chainConfigs
}

// AlchemyURL returns the Alchemy RPC URL of a chain, empty if the chain has no Alchemy network
func AlchemyURL(chainID int, apiKey string) string {
	network := chains.GetAlchemyNetwork(chainID)
	if network == "" || apiKey == "" {
		return ""
	}
	return fmt.Sprintf(alchemyURLFormat, network, apiKey)
}
