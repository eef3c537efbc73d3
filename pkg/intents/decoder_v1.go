package intents

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/speedrun-hq/intentscope/pkg/dutchorder"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

// OrderParser decodes an encoded V1 order
type OrderParser interface {
	Parse(encoded string, chainID int) (*dutchorder.Order, error)
}

// Denylist is a set of order hashes that must never be returned, compared case-insensitively
type Denylist map[string]struct{}

// NewDenylist builds a denylist from a list of hashes
func NewDenylist(hashes []string) Denylist {
	denylist := make(Denylist, len(hashes))
	for _, hash := range hashes {
		denylist[strings.ToLower(hash)] = struct{}{}
	}
	return denylist
}

// Contains reports whether the hash is denylisted
func (d Denylist) Contains(hash string) bool {
	_, ok := d[strings.ToLower(hash)]
	return ok
}

// V1Decoder turns raw Dutch orders into intents
type V1Decoder struct {
	parser   OrderParser
	denylist Denylist
}

// NewV1Decoder creates a V1 decoder, a nil parser uses the built-in order codec
func NewV1Decoder(parser OrderParser, ignoredHashes []string) *V1Decoder {
	if parser == nil {
		parser = dutchorder.Parser{}
	}
	return &V1Decoder{
		parser:   parser,
		denylist: NewDenylist(ignoredHashes),
	}
}

// Decode decodes a raw V1 order. It returns ok=false when the order is denylisted.
func (d *V1Decoder) Decode(raw models.RawDutchIntentV1, chainID int) (models.Intent, bool, error) {
	order, err := d.parser.Parse(raw.EncodedOrder, chainID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse order: %w", err)
	}

	hash := order.Hash().Hex()
	if d.denylist.Contains(hash) {
		return nil, false, nil
	}

	base, err := v1Base(order, hash, raw, chainID)
	if err != nil {
		return nil, false, err
	}

	switch raw.OrderStatus {
	case models.OrderStatusFilled:
		if raw.TxHash == nil || *raw.TxHash == "" {
			return nil, false, fmt.Errorf("%w: filled order %s has no txHash", ErrInvalidStatus, hash)
		}
		if raw.SettledAmounts == nil {
			return nil, false, fmt.Errorf("%w: filled order %s has no settled amounts", ErrInvalidStatus, hash)
		}
		return models.FilledDutchIntentV1{
			IntentBase:  base,
			Settlements: raw.SettledAmounts,
			TxHash:      *raw.TxHash,
		}, true, nil
	case models.OrderStatusOpen:
		return models.OpenDutchIntentV1{IntentBase: base}, true, nil
	default:
		return nil, false, fmt.Errorf("%w: %q for order %s", ErrInvalidStatus, raw.OrderStatus, hash)
	}
}

func v1Base(order *dutchorder.Order, hash string, raw models.RawDutchIntentV1, chainID int) (models.IntentBase, error) {
	decayStart, err := timestamp(order.DecayStartTime)
	if err != nil {
		return models.IntentBase{}, fmt.Errorf("order %s: invalid decay start time: %v", hash, err)
	}
	decayEnd, err := timestamp(order.DecayEndTime)
	if err != nil {
		return models.IntentBase{}, fmt.Errorf("order %s: invalid decay end time: %v", hash, err)
	}
	if err := checkDecayWindow(hash, decayStart, decayEnd); err != nil {
		return models.IntentBase{}, err
	}

	outputs := make([]models.Output, 0, len(order.Outputs))
	for _, output := range order.Outputs {
		outputs = append(outputs, models.Output{
			Token:       output.Token.Hex(),
			StartAmount: amount(output.StartAmount),
			EndAmount:   amount(output.EndAmount),
			Recipient:   output.Recipient.Hex(),
		})
	}

	return models.IntentBase{
		Hash: hash,
		Input: models.Input{
			Token:       order.Input.Token.Hex(),
			StartAmount: amount(order.Input.StartAmount),
			EndAmount:   amount(order.Input.EndAmount),
		},
		Outputs:        outputs,
		DecayStartTime: decayStart,
		DecayEndTime:   decayEnd,
		Swapper:        order.Info.Swapper.Hex(),
		Filler:         order.ExclusiveFiller.Hex(),
		Reactor:        order.Info.Reactor.Hex(),
		ChainID:        recordChainID(raw.ChainID, chainID),
		CreatedAt:      raw.CreatedAt,
	}, nil
}

// recordChainID prefers the chain reported by the order book over the requested one
func recordChainID(recordChain, requestChain int) int {
	if recordChain != 0 {
		return recordChain
	}
	return requestChain
}

func timestamp(v *big.Int) (int64, error) {
	if v == nil {
		return 0, nil
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("%s out of range", v)
	}
	return v.Int64(), nil
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
