package intents

import (
	"context"
	"errors"
	"fmt"

	"github.com/speedrun-hq/intentscope/pkg/chainclient"
)

var (
	// ErrInvalidOrderType is returned for an order type other than Dutch or Dutch_V2
	ErrInvalidOrderType = errors.New("invalid order type")

	// ErrInvalidStatus is returned for an order whose status is neither open nor filled,
	// or whose status-dependent fields are missing
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrFillEventNotFound is returned when a filled V2 order has no matching Fill event
	ErrFillEventNotFound = errors.New("fill event not found")

	// ErrUnsupportedChain is returned when no V2 reactor is known for the chain
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrInvalidDecayWindow is returned for an order whose decay ends before it starts
	ErrInvalidDecayWindow = errors.New("invalid decay window")
)

// ErrorType classifies a pipeline error for metrics and logs
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidOrderType):
		return "invalid_order_type"
	case errors.Is(err, ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, ErrInvalidDecayWindow):
		return "invalid_decay_window"
	case errors.Is(err, ErrFillEventNotFound):
		return "fill_event_not_found"
	case errors.Is(err, ErrUnsupportedChain), errors.Is(err, chainclient.ErrChainNotConfigured):
		return "unsupported_chain"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "transport"
	}
}

// checkDecayWindow rejects a decay window that ends before it starts
func checkDecayWindow(hash string, start, end int64) error {
	if start > end {
		return fmt.Errorf("%w: order %s decays from %d to %d", ErrInvalidDecayWindow, hash, start, end)
	}
	return nil
}
