package intents

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/speedrun-hq/intentscope/pkg/dutchorder"
	"github.com/speedrun-hq/intentscope/pkg/models"
	"github.com/stretchr/testify/require"
)

const (
	testV1Reactor   = "0x6000da47483062A0D734Ba3dc7576Ce6A0B645C4"
	testV2Reactor   = "0x1bd1aAdc9E230626C44a139d7E70d842749351eb"
	cosignerFiller  = "0x0000000000000000000000000000000000000000"
	onChainFiller   = "0xfB1C7C2E3A9bD0F7F9C3fF6bF1A5c2E4d6A8b0C1"
	testSwapper     = "0x1111111111111111111111111111111111111111"
	testUSDC        = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	testWETH        = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	testArbitrumID  = 42161
	testEthereumID  = 1
	testPolygonID   = 137
	testCreatedAtTs = 1700000000
)

// v1Order returns an encoded V1 order and its order hash
func v1Order(t *testing.T, nonce int64) (string, string) {
	t.Helper()
	return v1OrderWith(t, nonce, nil)
}

// v1OrderWith is v1Order with a hook to alter the order before encoding
func v1OrderWith(t *testing.T, nonce int64, modify func(*dutchorder.Order)) (string, string) {
	t.Helper()

	order := &dutchorder.Order{
		Info: dutchorder.OrderInfo{
			Reactor:                  common.HexToAddress(testV1Reactor),
			Swapper:                  common.HexToAddress(testSwapper),
			Nonce:                    big.NewInt(nonce),
			Deadline:                 big.NewInt(1700000300),
			AdditionalValidationData: []byte{},
		},
		DecayStartTime:         big.NewInt(1700000000),
		DecayEndTime:           big.NewInt(1700000060),
		ExclusiveFiller:        common.HexToAddress("0x2222222222222222222222222222222222222222"),
		ExclusivityOverrideBps: big.NewInt(0),
		Input: dutchorder.DutchInput{
			Token:       common.HexToAddress(testUSDC),
			StartAmount: big.NewInt(1000000),
			EndAmount:   big.NewInt(1000000),
		},
		Outputs: []dutchorder.DutchOutput{{
			Token:       common.HexToAddress(testWETH),
			StartAmount: big.NewInt(500000000000000),
			EndAmount:   big.NewInt(490000000000000),
			Recipient:   common.HexToAddress(testSwapper),
		}},
	}

	if modify != nil {
		modify(order)
	}

	encoded, err := dutchorder.Encode(order)
	require.NoError(t, err)
	return encoded, order.Hash().Hex()
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func strPtr(s string) *string {
	return &s
}

func rawV2(hash string, status models.OrderStatus, txHash *string) models.RawDutchIntentV2 {
	return models.RawDutchIntentV2{
		OrderHash: hash,
		Input:     models.Input{Token: testUSDC, StartAmount: "1000000", EndAmount: "1000000"},
		Outputs: []models.Output{
			{Token: testWETH, StartAmount: "500000000000000", EndAmount: "490000000000000", Recipient: testSwapper},
		},
		CosignerData: models.CosignerData{
			DecayStartTime:  1700000010,
			DecayEndTime:    1700000070,
			ExclusiveFiller: cosignerFiller,
		},
		Swapper:     testSwapper,
		ChainID:     testArbitrumID,
		OrderStatus: status,
		CreatedAt:   testCreatedAtTs,
		TxHash:      txHash,
	}
}

type fakeOrderBook struct {
	orders []json.RawMessage
	err    error
	calls  int32
	params models.FetchOrdersParams
}

func (f *fakeOrderBook) FetchOrders(_ context.Context, params models.FetchOrdersParams) ([]json.RawMessage, error) {
	atomic.AddInt32(&f.calls, 1)
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

var errLookupsNotConcurrent = errors.New("fill lookups did not overlap")

type fakeFillFetcher struct {
	mu     sync.Mutex
	events map[string][]models.FillEvent
	errs   map[string]error
	delays map[string]time.Duration
	calls  []string

	// inFlight, when set, holds every lookup until that many are running at once
	inFlight int
	release  chan struct{}
}

func (f *fakeFillFetcher) FetchFillEvents(ctx context.Context, txHash string, _ int) ([]models.FillEvent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, txHash)
	delay := f.delays[txHash]
	var release chan struct{}
	if f.inFlight > 0 {
		if f.release == nil {
			f.release = make(chan struct{})
		}
		if len(f.calls) == f.inFlight {
			close(f.release)
		}
		release = f.release
	}
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
			return nil, errLookupsNotConcurrent
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[txHash]; err != nil {
		return nil, err
	}
	return f.events[txHash], nil
}

func (f *fakeFillFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
