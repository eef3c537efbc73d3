package chains

import "strings"

// Supported chain IDs
const (
	Ethereum = 1
	Optimism = 10
	Polygon  = 137
	Base     = 8453
	Arbitrum = 42161
)

// ChainList contains the list of supported chain IDs
var ChainList = []int{
	Ethereum,
	Arbitrum,
	Polygon,
	Base,
	Optimism,
}

// chainNames maps chain IDs to their names
var chainNames = map[int]string{
	Ethereum: "ETHEREUM",
	Optimism: "OPTIMISM",
	Polygon:  "POLYGON",
	Base:     "BASE",
	Arbitrum: "ARBITRUM",
}

// alchemyNetworks maps chain IDs to the Alchemy network slug used in RPC URLs
var alchemyNetworks = map[int]string{
	Ethereum: "eth-mainnet",
	Optimism: "opt-mainnet",
	Polygon:  "polygon-mainnet",
	Base:     "base-mainnet",
	Arbitrum: "arb-mainnet",
}

// v2ReactorAddresses are the Dutch_V2 reactor deployments per chain
var v2ReactorAddresses = map[int]string{
	Ethereum: "0x00000011F84B9aa48e5f8aA8B9897600006289Be",
	Arbitrum: "0x1bd1aAdc9E230626C44a139d7E70d842749351eb",
}

// GetChainName returns the name of the chain for a given chain ID
func GetChainName(chainID int) string {
	name, exists := chainNames[chainID]
	if !exists {
		return ""
	}
	return name
}

// GetChainID returns the chain ID for a chain name, case-insensitive
func GetChainID(name string) (int, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for chainID, chainName := range chainNames {
		if chainName == name {
			return chainID, true
		}
	}
	return 0, false
}

// GetAlchemyNetwork returns the Alchemy network slug for a chain ID
func GetAlchemyNetwork(chainID int) string {
	return alchemyNetworks[chainID]
}

// DefaultV2ReactorAddresses returns a copy of the built-in Dutch_V2 reactor table
func DefaultV2ReactorAddresses() map[int]string {
	reactors := make(map[int]string, len(v2ReactorAddresses))
	for chainID, address := range v2ReactorAddresses {
		reactors[chainID] = address
	}
	return reactors
}
