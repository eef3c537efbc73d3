package intents

import (
	"fmt"

	"github.com/speedrun-hq/intentscope/pkg/models"
)

// V2Decoder turns raw Dutch_V2 orders into intents. It never drops orders.
type V2Decoder struct {
	reactors map[int]string
}

// NewV2Decoder creates a V2 decoder over the reactor table keyed by chain ID
func NewV2Decoder(reactors map[int]string) *V2Decoder {
	table := make(map[int]string, len(reactors))
	for chainID, reactor := range reactors {
		table[chainID] = reactor
	}
	return &V2Decoder{reactors: table}
}

// Reactor returns the reactor address of a chain
func (d *V2Decoder) Reactor(chainID int) (string, bool) {
	reactor, ok := d.reactors[chainID]
	return reactor, ok && reactor != ""
}

// Decode decodes a raw V2 order. The reactor always comes from the table, never from the payload.
func (d *V2Decoder) Decode(raw models.RawDutchIntentV2, chainID int) (models.Intent, error) {
	if raw.OrderStatus != models.OrderStatusOpen && raw.OrderStatus != models.OrderStatusFilled {
		return nil, fmt.Errorf("%w: %q for order %s", ErrInvalidStatus, raw.OrderStatus, raw.OrderHash)
	}

	reactor, ok := d.Reactor(chainID)
	if !ok {
		return nil, fmt.Errorf("%w: no reactor for chain %d", ErrUnsupportedChain, chainID)
	}

	if err := checkDecayWindow(raw.OrderHash, raw.CosignerData.DecayStartTime, raw.CosignerData.DecayEndTime); err != nil {
		return nil, err
	}

	outputs := make([]models.Output, len(raw.Outputs))
	copy(outputs, raw.Outputs)

	base := models.IntentBase{
		Hash:           raw.OrderHash,
		Input:          raw.Input,
		Outputs:        outputs,
		DecayStartTime: raw.CosignerData.DecayStartTime,
		DecayEndTime:   raw.CosignerData.DecayEndTime,
		Swapper:        raw.Swapper,
		Filler:         raw.CosignerData.ExclusiveFiller,
		Reactor:        reactor,
		ChainID:        recordChainID(raw.ChainID, chainID),
		CreatedAt:      raw.CreatedAt,
	}

	if raw.OrderStatus == models.OrderStatusOpen {
		return models.OpenDutchIntentV2{IntentBase: base}, nil
	}
	if raw.TxHash == nil || *raw.TxHash == "" {
		return nil, fmt.Errorf("%w: filled order %s has no txHash", ErrInvalidStatus, raw.OrderHash)
	}
	return models.FilledDutchIntentV2{IntentBase: base, TxHash: *raw.TxHash}, nil
}
