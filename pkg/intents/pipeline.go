package intents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/metrics"
	"github.com/speedrun-hq/intentscope/pkg/models"
	"golang.org/x/sync/errgroup"
)

// OrderBook fetches raw orders. Errors are returned to the pipeline caller unchanged.
type OrderBook interface {
	FetchOrders(ctx context.Context, params models.FetchOrdersParams) ([]json.RawMessage, error)
}

// Pipeline fetches orders from the order book and normalizes them into intents
type Pipeline struct {
	orderBook OrderBook
	v1        *V1Decoder
	v2        *V2Decoder
	enricher  *FillEnricher
	logger    logger.Logger
}

// NewPipeline creates a new pipeline
func NewPipeline(orderBook OrderBook, v1 *V1Decoder, v2 *V2Decoder, enricher *FillEnricher, logger logger.Logger) *Pipeline {
	return &Pipeline{
		orderBook: orderBook,
		v1:        v1,
		v2:        v2,
		enricher:  enricher,
		logger:    logger,
	}
}

// FetchIntents returns the intents matching the params, in order-book order.
// Either every order decodes and enriches or the call fails as a whole.
func (p *Pipeline) FetchIntents(ctx context.Context, params models.FetchOrdersParams) ([]models.Intent, error) {
	intents, err := p.fetchIntents(ctx, params)
	if err != nil {
		errType := ErrorType(err)
		metrics.PipelineErrors.WithLabelValues(strconv.Itoa(params.ChainID), errType).Inc()
		p.logger.ErrorWithChain(params.ChainID, "Failed to fetch %s intents (%s): %v", params.OrderType, errType, err)
		return nil, err
	}

	metrics.IntentsReturned.WithLabelValues(strconv.Itoa(params.ChainID), string(params.OrderType), string(params.OrderStatus)).
		Add(float64(len(intents)))
	return intents, nil
}

func (p *Pipeline) fetchIntents(ctx context.Context, params models.FetchOrdersParams) ([]models.Intent, error) {
	switch params.OrderType {
	case models.OrderTypeDutch:
		return p.fetchV1(ctx, params)
	case models.OrderTypeDutchV2:
		// Fail before any I/O when the chain has no reactor
		if _, ok := p.v2.Reactor(params.ChainID); !ok {
			return nil, fmt.Errorf("%w: no reactor for chain %d", ErrUnsupportedChain, params.ChainID)
		}
		return p.fetchV2(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderType, params.OrderType)
	}
}

func (p *Pipeline) fetchV1(ctx context.Context, params models.FetchOrdersParams) ([]models.Intent, error) {
	orders, err := p.fetchOrders(ctx, params)
	if err != nil {
		return nil, err
	}

	intents := make([]models.Intent, 0, len(orders))
	dropped := 0
	for i, order := range orders {
		var raw models.RawDutchIntentV1
		if err := json.Unmarshal(order, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode order %d: %v", i, err)
		}

		intent, ok, err := p.v1.Decode(raw, params.ChainID)
		if err != nil {
			return nil, err
		}
		if !ok {
			dropped++
			continue
		}
		intents = append(intents, intent)
	}

	if dropped > 0 {
		metrics.IntentsDropped.WithLabelValues(strconv.Itoa(params.ChainID)).Add(float64(dropped))
		p.logger.DebugWithChain(params.ChainID, "Dropped %d denylisted orders", dropped)
	}
	return intents, nil
}

func (p *Pipeline) fetchV2(ctx context.Context, params models.FetchOrdersParams) ([]models.Intent, error) {
	orders, err := p.fetchOrders(ctx, params)
	if err != nil {
		return nil, err
	}

	intents := make([]models.Intent, 0, len(orders))
	for i, order := range orders {
		var raw models.RawDutchIntentV2
		if err := json.Unmarshal(order, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode order %d: %v", i, err)
		}

		intent, err := p.v2.Decode(raw, params.ChainID)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}

	if params.OrderStatus != models.OrderStatusFilled {
		return intents, nil
	}
	return p.enrichAll(ctx, intents)
}

// enrichAll enriches every intent concurrently. The first failure fails the whole batch.
func (p *Pipeline) enrichAll(ctx context.Context, intents []models.Intent) ([]models.Intent, error) {
	enriched := make([]models.Intent, len(intents))

	g, ctx := errgroup.WithContext(ctx)
	for i, intent := range intents {
		g.Go(func() error {
			filled, ok := intent.(models.FilledDutchIntentV2)
			if !ok {
				return fmt.Errorf("%w: %s order %s in a filled query", ErrInvalidStatus, intent.Status(), intent.Base().Hash)
			}

			result, err := p.enricher.Enrich(ctx, filled)
			if err != nil {
				return err
			}
			enriched[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

func (p *Pipeline) fetchOrders(ctx context.Context, params models.FetchOrdersParams) ([]json.RawMessage, error) {
	orders, err := p.orderBook.FetchOrders(ctx, params)
	if err != nil {
		return nil, err
	}

	metrics.OrdersFetched.WithLabelValues(strconv.Itoa(params.ChainID), string(params.OrderType)).Add(float64(len(orders)))
	p.logger.DebugWithChain(params.ChainID, "Decoding %d %s orders", len(orders), params.OrderType)
	return orders, nil
}
