package chainclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/speedrun-hq/intentscope/pkg/contracts"
	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/metrics"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

// ErrChainNotConfigured is returned when no RPC client exists for the requested chain
var ErrChainNotConfigured = errors.New("chain not configured")

// ReceiptReader reads transaction receipts from a chain
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// FillEventFetcher looks up reactor Fill events of settlement transactions
type FillEventFetcher struct {
	readers  map[int]ReceiptReader
	filterer *contracts.ReactorFilterer
	cache    *FillEventCache
	logger   logger.Logger
}

// NewFillEventFetcher creates a fetcher over the given per-chain receipt readers
func NewFillEventFetcher(readers map[int]ReceiptReader, cache *FillEventCache, logger logger.Logger) (*FillEventFetcher, error) {
	filterer, err := contracts.NewReactorFilterer(common.Address{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reactor binding: %v", err)
	}
	if cache == nil {
		cache = NewFillEventCache(0)
	}

	return &FillEventFetcher{
		readers:  readers,
		filterer: filterer,
		cache:    cache,
		logger:   logger,
	}, nil
}

// FetchFillEvents returns the Fill events emitted by a transaction.
// An unknown transaction yields an empty result.
func (f *FillEventFetcher) FetchFillEvents(ctx context.Context, txHash string, chainID int) ([]models.FillEvent, error) {
	reader, ok := f.readers[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrChainNotConfigured, chainID)
	}

	txHash = strings.ToLower(txHash)
	chainLabel := strconv.Itoa(chainID)
	if events, found := f.cache.Get(chainID, txHash); found {
		metrics.FillCacheHits.WithLabelValues(chainLabel).Inc()
		return events, nil
	}

	start := time.Now()
	receipt, err := reader.TransactionReceipt(ctx, common.HexToHash(txHash))
	metrics.FillLookupLatency.WithLabelValues(chainLabel).Observe(time.Since(start).Seconds())
	if errors.Is(err, ethereum.NotFound) {
		f.logger.DebugWithChain(chainID, "No receipt found for transaction %s", txHash)
		return []models.FillEvent{}, nil
	}
	if err != nil {
		return nil, err
	}

	events := f.parseFillEvents(receipt.Logs)
	f.cache.Set(chainID, txHash, events)

	f.logger.DebugWithChain(chainID, "Found %d fill events in transaction %s", len(events), txHash)
	return events, nil
}

// parseFillEvents extracts Fill events from receipt logs, skipping every other log
func (f *FillEventFetcher) parseFillEvents(logs []*types.Log) []models.FillEvent {
	fillTopic := f.filterer.FillTopic()

	events := make([]models.FillEvent, 0)
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != fillTopic {
			continue
		}
		fill, err := f.filterer.ParseFill(*log)
		if err != nil {
			f.logger.Debug("Skipping malformed Fill log %d of %s: %v", log.Index, log.TxHash.Hex(), err)
			continue
		}
		events = append(events, newFillEvent(fill))
	}
	return events
}

// ScanFillEvents returns the Fill events a reactor emitted from fromBlock up to toBlock,
// optionally restricted to some order hashes. A nil toBlock scans up to the latest block.
func ScanFillEvents(ctx context.Context, filterer bind.ContractFilterer, reactor common.Address, fromBlock uint64, toBlock *uint64, orderHashes []common.Hash) ([]models.FillEvent, error) {
	binding, err := contracts.NewReactorFilterer(reactor, filterer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reactor binding: %v", err)
	}

	hashRule := make([][32]byte, 0, len(orderHashes))
	for _, orderHash := range orderHashes {
		hashRule = append(hashRule, orderHash)
	}

	it, err := binding.FilterFill(&bind.FilterOpts{Start: fromBlock, End: toBlock, Context: ctx}, hashRule, nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	events := make([]models.FillEvent, 0)
	for it.Next() {
		events = append(events, newFillEvent(it.Event))
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return events, nil
}

func newFillEvent(fill *contracts.ReactorFill) models.FillEvent {
	return models.FillEvent{
		OrderHash: common.Hash(fill.OrderHash).Hex(),
		Filler:    fill.Filler.Hex(),
		Swapper:   fill.Swapper.Hex(),
		Nonce:     fill.Nonce,
		Reactor:   fill.Raw.Address.Hex(),
		TxHash:    fill.Raw.TxHash.Hex(),
		LogIndex:  fill.Raw.Index,
	}
}
