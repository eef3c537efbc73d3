package intents

import (
	"context"
	"fmt"
	"strings"

	"github.com/speedrun-hq/intentscope/pkg/models"
)

// FillEventFetcher looks up the Fill events emitted by a settlement transaction.
// An unknown transaction yields no events and no error.
type FillEventFetcher interface {
	FetchFillEvents(ctx context.Context, txHash string, chainID int) ([]models.FillEvent, error)
}

// FillEnricher replaces the cosigner-assigned filler of filled V2 intents with the on-chain filler
type FillEnricher struct {
	fetcher FillEventFetcher
}

// NewFillEnricher creates a new enricher
func NewFillEnricher(fetcher FillEventFetcher) *FillEnricher {
	return &FillEnricher{fetcher: fetcher}
}

// Enrich returns a copy of the intent whose filler is the filler recorded by the Fill event
func (e *FillEnricher) Enrich(ctx context.Context, intent models.FilledDutchIntentV2) (models.FilledDutchIntentV2, error) {
	events, err := e.fetcher.FetchFillEvents(ctx, intent.TxHash, intent.ChainID)
	if err != nil {
		return models.FilledDutchIntentV2{}, err
	}

	event, ok := selectFillEvent(events, intent.Hash, intent.Reactor)
	if !ok {
		return models.FilledDutchIntentV2{}, fmt.Errorf("%w: order %s in transaction %s on chain %d (%d fill events)",
			ErrFillEventNotFound, intent.Hash, intent.TxHash, intent.ChainID, len(events))
	}

	return intent.WithFiller(event.Filler), nil
}

// selectFillEvent picks the event of the order emitted by the order's reactor.
// Events of other orders or other contracts never stand in for it.
func selectFillEvent(events []models.FillEvent, orderHash, reactor string) (models.FillEvent, bool) {
	for _, event := range events {
		if !strings.EqualFold(event.OrderHash, orderHash) {
			continue
		}
		if reactor != "" && !strings.EqualFold(event.Reactor, reactor) {
			continue
		}
		return event, true
	}
	return models.FillEvent{}, false
}
