package intents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(orderBook OrderBook, fetcher FillEventFetcher, ignored []string) *Pipeline {
	return NewPipeline(
		orderBook,
		NewV1Decoder(nil, ignored),
		NewV2Decoder(map[int]string{
			testEthereumID: "0x00000011F84B9aa48e5f8aA8B9897600006289Be",
			testArbitrumID: testV2Reactor,
		}),
		NewFillEnricher(fetcher),
		&logger.EmptyLogger{},
	)
}

func TestFetchIntentsV1Open(t *testing.T) {
	encoded, hash := v1Order(t, 10)
	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: encoded, OrderStatus: models.OrderStatusOpen, ChainID: testEthereumID, CreatedAt: testCreatedAtTs}),
	}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

	params := models.FetchOrdersParams{ChainID: testEthereumID, OrderType: models.OrderTypeDutch, OrderStatus: models.OrderStatusOpen}
	intents, err := pipeline.FetchIntents(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, params, orderBook.params)

	data, err := json.Marshal(intents[0])
	require.NoError(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, hash, record["hash"])
	assert.Equal(t, "open", record["orderStatus"])
	assert.Nil(t, record["txHash"])
	assert.Nil(t, record["settlements"])
	assert.Contains(t, record, "txHash")
	assert.Contains(t, record, "settlements")
}

func TestFetchIntentsV1DenylistDropsAndPreservesOrder(t *testing.T) {
	first, firstHash := v1Order(t, 11)
	denied, deniedHash := v1Order(t, 12)
	last, lastHash := v1Order(t, 13)
	deniedFilled, deniedFilledHash := v1Order(t, 14)

	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: first, OrderStatus: models.OrderStatusOpen}),
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: denied, OrderStatus: models.OrderStatusOpen}),
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: deniedFilled, OrderStatus: models.OrderStatusFilled, TxHash: strPtr("0x01"), SettledAmounts: []models.Settlement{}}),
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: last, OrderStatus: models.OrderStatusOpen}),
	}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, []string{deniedHash, deniedFilledHash})

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{ChainID: testEthereumID, OrderType: models.OrderTypeDutch})
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, firstHash, intents[0].Base().Hash)
	assert.Equal(t, lastHash, intents[1].Base().Hash)
	assert.Equal(t, testEthereumID, intents[0].Base().ChainID)
}

func TestFetchIntentsV2IgnoresDenylist(t *testing.T) {
	hash := "0x5555555555555555555555555555555555555555555555555555555555555555"
	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, rawV2(hash, models.OrderStatusOpen, nil)),
	}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, []string{hash})

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
		ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusOpen,
	})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, hash, intents[0].Base().Hash)
}

func TestFetchIntentsV2ReactorFromTable(t *testing.T) {
	raw := rawJSON(t, rawV2("0xaa", models.OrderStatusOpen, nil))

	// a reactor field on the payload is never trusted
	var withReactor map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &withReactor))
	withReactor["reactor"] = "0x9999999999999999999999999999999999999999"

	orderBook := &fakeOrderBook{orders: []json.RawMessage{rawJSON(t, withReactor)}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
		ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusOpen,
	})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, testV2Reactor, intents[0].Base().Reactor)
}

func TestFetchIntentsV2OpenSkipsEnrichment(t *testing.T) {
	orderBook := &fakeOrderBook{orders: []json.RawMessage{rawJSON(t, rawV2("0xaa", models.OrderStatusOpen, nil))}}
	fetcher := &fakeFillFetcher{}
	pipeline := newTestPipeline(orderBook, fetcher, nil)

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
		ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusOpen,
	})
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, cosignerFiller, intents[0].Base().Filler)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestFetchIntentsV2FilledEnrichesConcurrently(t *testing.T) {
	const n = 5
	orders := make([]json.RawMessage, 0, n)
	events := make(map[string][]models.FillEvent, n)
	delays := make(map[string]time.Duration, n)
	for i := 0; i < n; i++ {
		hash := fmt.Sprintf("0x%064x", i+1)
		txHash := fmt.Sprintf("0xtx%d", i)
		orders = append(orders, rawJSON(t, rawV2(hash, models.OrderStatusFilled, strPtr(txHash))))
		events[txHash] = []models.FillEvent{{OrderHash: hash, Filler: fmt.Sprintf("0x%040x", i+100), Reactor: testV2Reactor}}
		// later orders finish first
		delays[txHash] = time.Duration(n-i) * 5 * time.Millisecond
	}

	// every lookup waits until all n are in flight
	fetcher := &fakeFillFetcher{events: events, delays: delays, inFlight: n}
	pipeline := newTestPipeline(&fakeOrderBook{orders: orders}, fetcher, nil)

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
		ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusFilled,
	})
	require.NoError(t, err)
	require.Len(t, intents, n)
	for i, intent := range intents {
		filled, ok := intent.(models.FilledDutchIntentV2)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("0x%064x", i+1), filled.Hash)
		assert.Equal(t, fmt.Sprintf("0x%040x", i+100), filled.Filler)
		assert.NotEqual(t, cosignerFiller, filled.Filler)
		assert.Equal(t, fmt.Sprintf("0xtx%d", i), filled.TxHash)
	}
	assert.Equal(t, n, fetcher.callCount())
}

func TestFetchIntentsV2FilledFailsAsAWhole(t *testing.T) {
	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, rawV2("0xaa", models.OrderStatusFilled, strPtr("0xtx1"))),
		rawJSON(t, rawV2("0xbb", models.OrderStatusFilled, strPtr("0xtx2"))),
	}}

	t.Run("fill event not found", func(t *testing.T) {
		fetcher := &fakeFillFetcher{events: map[string][]models.FillEvent{
			"0xtx1": {{OrderHash: "0xaa", Filler: onChainFiller, Reactor: testV2Reactor}},
		}}
		pipeline := newTestPipeline(orderBook, fetcher, nil)

		intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
			ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusFilled,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFillEventNotFound))
		assert.Nil(t, intents)
	})

	t.Run("lookup transport failure", func(t *testing.T) {
		rpcErr := errors.New("rpc timeout")
		fetcher := &fakeFillFetcher{
			events: map[string][]models.FillEvent{"0xtx1": {{OrderHash: "0xaa", Filler: onChainFiller, Reactor: testV2Reactor}}},
			errs:   map[string]error{"0xtx2": rpcErr},
		}
		pipeline := newTestPipeline(orderBook, fetcher, nil)

		intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
			ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusFilled,
		})
		assert.Equal(t, rpcErr, err)
		assert.Nil(t, intents)
	})
}

func TestFetchIntentsV2OpenOrderInFilledQuery(t *testing.T) {
	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, rawV2("0xaa", models.OrderStatusOpen, nil)),
	}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

	_, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{
		ChainID: testArbitrumID, OrderType: models.OrderTypeDutchV2, OrderStatus: models.OrderStatusFilled,
	})
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestFetchIntentsFailsBeforeIO(t *testing.T) {
	tests := []struct {
		name    string
		params  models.FetchOrdersParams
		wantErr error
	}{
		{
			name:    "unknown order type",
			params:  models.FetchOrdersParams{ChainID: testEthereumID, OrderType: "Unknown", OrderStatus: models.OrderStatusOpen},
			wantErr: ErrInvalidOrderType,
		},
		{
			name:    "empty order type",
			params:  models.FetchOrdersParams{ChainID: testEthereumID},
			wantErr: ErrInvalidOrderType,
		},
		{
			name:    "v2 chain without reactor",
			params:  models.FetchOrdersParams{ChainID: testPolygonID, OrderType: models.OrderTypeDutchV2},
			wantErr: ErrUnsupportedChain,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orderBook := &fakeOrderBook{}
			pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

			intents, err := pipeline.FetchIntents(context.Background(), tc.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr))
			assert.Nil(t, intents)
			assert.Equal(t, int32(0), atomic.LoadInt32(&orderBook.calls))
		})
	}
}

func TestFetchIntentsTransportErrorUnchanged(t *testing.T) {
	transportErr := errors.New("order book unreachable")
	orderBook := &fakeOrderBook{err: transportErr}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

	for _, orderType := range []models.OrderType{models.OrderTypeDutch, models.OrderTypeDutchV2} {
		t.Run(string(orderType), func(t *testing.T) {
			_, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{ChainID: testEthereumID, OrderType: orderType})
			assert.Equal(t, transportErr, err)
		})
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&orderBook.calls))
}

func TestFetchIntentsDecodeErrorFailsWholeCall(t *testing.T) {
	encoded, _ := v1Order(t, 20)
	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: encoded, OrderStatus: models.OrderStatusOpen}),
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: encoded, OrderStatus: "unknown"}),
	}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{ChainID: testEthereumID, OrderType: models.OrderTypeDutch})
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Nil(t, intents)

	orderBook.orders = []json.RawMessage{json.RawMessage(`{"encodedOrder": 5}`)}
	_, err = pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{ChainID: testEthereumID, OrderType: models.OrderTypeDutch})
	assert.Error(t, err)
}

func TestFetchIntentsRoundTrip(t *testing.T) {
	encoded, _ := v1Order(t, 30)
	orderBook := &fakeOrderBook{orders: []json.RawMessage{
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: encoded, OrderStatus: models.OrderStatusFilled, TxHash: strPtr("0xfeed"), SettledAmounts: []models.Settlement{{AmountOut: "1"}}}),
		rawJSON(t, models.RawDutchIntentV1{EncodedOrder: encoded, OrderStatus: models.OrderStatusOpen}),
	}}
	pipeline := newTestPipeline(orderBook, &fakeFillFetcher{}, nil)

	intents, err := pipeline.FetchIntents(context.Background(), models.FetchOrdersParams{ChainID: testEthereumID, OrderType: models.OrderTypeDutch})
	require.NoError(t, err)

	for _, intent := range intents {
		data, err := json.Marshal(intent)
		require.NoError(t, err)

		decoded, err := models.UnmarshalIntent(data)
		require.NoError(t, err)
		assert.Equal(t, intent, decoded)
	}
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "", ErrorType(nil))
	assert.Equal(t, "invalid_order_type", ErrorType(fmt.Errorf("%w: x", ErrInvalidOrderType)))
	assert.Equal(t, "invalid_status", ErrorType(ErrInvalidStatus))
	assert.Equal(t, "fill_event_not_found", ErrorType(ErrFillEventNotFound))
	assert.Equal(t, "unsupported_chain", ErrorType(ErrUnsupportedChain))
	assert.Equal(t, "cancelled", ErrorType(context.Canceled))
	assert.Equal(t, "transport", ErrorType(errors.New("boom")))
}
