package chainclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

// ErrTransactionNotFound is returned when a transaction hash is unknown to the chain
var ErrTransactionNotFound = errors.New("transaction not found")

// Client contains client and config information for a specific blockchain
type Client struct {
	ChainID        int
	RPCURL         string
	ReactorAddress string
	Client         *ethclient.Client
}

// Transaction is the JSON view of a transaction returned by TransactionByHash
type Transaction struct {
	Hash     string   `json:"hash"`
	ChainID  int      `json:"chainId"`
	From     string   `json:"from"`
	To       string   `json:"to,omitempty"`
	Nonce    uint64   `json:"nonce"`
	Value    *big.Int `json:"value"`
	Gas      uint64   `json:"gas"`
	GasPrice *big.Int `json:"gasPrice"`
	Input    string   `json:"input"`
	Pending  bool     `json:"pending"`
}

// New creates a new client connected to the chain RPC
func New(ctx context.Context, chainID int, rpcURL string, reactorAddress string) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("no RPC URL configured for chain %d", chainID)
	}

	client := &Client{
		ChainID:        chainID,
		RPCURL:         rpcURL,
		ReactorAddress: reactorAddress,
	}
	if err := client.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to chain %d: %v", chainID, err)
	}

	return client, nil
}

// TransactionByHash fetches a transaction, returning ErrTransactionNotFound for unknown hashes
func (c *Client) TransactionByHash(ctx context.Context, txHash string) (*Transaction, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("client not connected")
	}
	if !isTxHash(txHash) {
		return nil, fmt.Errorf("invalid transaction hash: %s", txHash)
	}

	tx, pending, err := c.Client.TransactionByHash(ctx, common.HexToHash(txHash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("%w: %s on chain %d", ErrTransactionNotFound, txHash, c.ChainID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", txHash, err)
	}

	return newTransaction(tx, pending, c.ChainID), nil
}

// TransactionReceipt fetches the receipt of a mined transaction
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	return c.Client.TransactionReceipt(ctx, txHash)
}

// GetLatestBlockNumber gets the latest block number from the chain
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	if c.Client == nil {
		return 0, fmt.Errorf("client not connected")
	}

	return c.Client.BlockNumber(ctx)
}

// ScanFillEvents returns the Fill events of the chain's reactor in a block range
func (c *Client) ScanFillEvents(ctx context.Context, fromBlock uint64, toBlock *uint64, orderHashes []common.Hash) ([]models.FillEvent, error) {
	if !common.IsHexAddress(c.ReactorAddress) {
		return nil, fmt.Errorf("%w: no reactor for chain %d", ErrChainNotConfigured, c.ChainID)
	}
	return ScanFillEvents(ctx, c.Client, common.HexToAddress(c.ReactorAddress), fromBlock, toBlock, orderHashes)
}

// Close closes the RPC connection
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// connect establishes the connection to the blockchain RPC
func (c *Client) connect(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, c.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to client: %v", err)
	}
	c.Client = client

	return nil
}

func newTransaction(tx *types.Transaction, pending bool, chainID int) *Transaction {
	result := &Transaction{
		Hash:     tx.Hash().Hex(),
		ChainID:  chainID,
		Nonce:    tx.Nonce(),
		Value:    tx.Value(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Input:    hexutil.Encode(tx.Data()),
		Pending:  pending,
	}
	if tx.To() != nil {
		result.To = tx.To().Hex()
	}
	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		result.From = from.Hex()
	}
	return result
}

func isTxHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}
