package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/speedrun-hq/intentscope/pkg/chainclient"
	"github.com/speedrun-hq/intentscope/pkg/chains"
	"github.com/speedrun-hq/intentscope/pkg/config"
	"github.com/speedrun-hq/intentscope/pkg/intents"
	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/orderbook"
	"github.com/spf13/cobra"
)

// app holds the components shared by the commands
type app struct {
	cfg      *config.Config
	logger   logger.Logger
	chains   map[int]*chainclient.Client
	pipeline *intents.Pipeline
}

// newApp loads the configuration and wires the pipeline.
// Chains without an RPC URL are skipped; V2 fill lookups on them fail as unsupported.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	log := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	chainIDs := make([]int, 0, len(cfg.Chains))
	for chainID := range cfg.Chains {
		chainIDs = append(chainIDs, chainID)
	}
	sort.Ints(chainIDs)

	clients := make(map[int]*chainclient.Client)
	readers := make(map[int]chainclient.ReceiptReader)
	for _, chainID := range chainIDs {
		chainConfig := cfg.Chains[chainID]
		if chainConfig.RPCURL == "" {
			log.DebugWithChain(chainID, "No RPC URL configured, skipping")
			continue
		}
		client, err := chainclient.New(ctx, chainID, chainConfig.RPCURL, chainConfig.ReactorAddress)
		if err != nil {
			closeClients(clients)
			return nil, err
		}
		clients[chainID] = client
		readers[chainID] = client
		log.InfoWithChain(chainID, "Connected to %s", chainConfig.Name)
	}

	fetcher, err := chainclient.NewFillEventFetcher(readers, chainclient.NewFillEventCache(cfg.FillEventCacheTTL), log)
	if err != nil {
		closeClients(clients)
		return nil, err
	}

	pipeline := intents.NewPipeline(
		orderbook.New(cfg.APIEndpoint, cfg.HTTPTimeout, log),
		intents.NewV1Decoder(nil, cfg.IgnoredIntentHashes),
		intents.NewV2Decoder(cfg.ReactorAddresses()),
		intents.NewFillEnricher(fetcher),
		log,
	)

	return &app{
		cfg:      cfg,
		logger:   log,
		chains:   clients,
		pipeline: pipeline,
	}, nil
}

// Close releases the chain connections
func (a *app) Close() {
	closeClients(a.chains)
}

func closeClients(clients map[int]*chainclient.Client) {
	for _, client := range clients {
		client.Close()
	}
}

// addChainFlags registers the --chain-id and --chain flags
func addChainFlags(c *cobra.Command) {
	c.Flags().Int("chain-id", chains.Ethereum, "chain ID")
	c.Flags().String("chain", "", "chain name (ethereum, arbitrum, polygon, base, optimism), overrides --chain-id")
}

// chainIDFromFlags resolves the chain selected by --chain or --chain-id
func chainIDFromFlags(c *cobra.Command) (int, error) {
	name, _ := c.Flags().GetString("chain")
	if name == "" {
		return c.Flags().GetInt("chain-id")
	}

	chainID, ok := chains.GetChainID(name)
	if !ok {
		return 0, fmt.Errorf("unknown chain %q", name)
	}
	return chainID, nil
}

// chainClient returns the connected client of a chain
func (a *app) chainClient(chainID int) (*chainclient.Client, error) {
	client, ok := a.chains[chainID]
	if !ok {
		return nil, fmt.Errorf("no RPC configured for chain %d", chainID)
	}
	return client, nil
}
