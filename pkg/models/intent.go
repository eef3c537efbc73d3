package models

import (
	"encoding/json"
	"fmt"
)

// OrderType is the protocol major version of an order
type OrderType string

const (
	OrderTypeDutch   OrderType = "Dutch"
	OrderTypeDutchV2 OrderType = "Dutch_V2"
)

// OrderStatus is the order-book status of an order
type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "open"
	OrderStatusFilled OrderStatus = "filled"
)

// Version is the normalized intent version, fixed 1:1 with the order type
type Version int

const (
	VersionV1 Version = 1
	VersionV2 Version = 2
)

// Input is the asset offered by the swapper
type Input struct {
	Token       string `json:"token"`
	StartAmount string `json:"startAmount"`
	EndAmount   string `json:"endAmount"`
}

// Output is an asset requested by the swapper, paid to the recipient
type Output struct {
	Token       string `json:"token"`
	StartAmount string `json:"startAmount"`
	EndAmount   string `json:"endAmount"`
	Recipient   string `json:"recipient"`
}

// Settlement is an amount realized when a V1 order was filled
type Settlement struct {
	TokenOut  string `json:"tokenOut,omitempty"`
	AmountOut string `json:"amountOut,omitempty"`
	TokenIn   string `json:"tokenIn,omitempty"`
	AmountIn  string `json:"amountIn,omitempty"`
}

// IntentBase holds the fields shared by every intent variant
type IntentBase struct {
	Hash           string   `json:"hash"`
	Input          Input    `json:"input"`
	Outputs        []Output `json:"outputs"`
	DecayStartTime int64    `json:"decayStartTime"`
	DecayEndTime   int64    `json:"decayEndTime"`
	Swapper        string   `json:"swapper"`
	Filler         string   `json:"filler"`
	Reactor        string   `json:"reactor"`
	ChainID        int      `json:"chainId"`
	CreatedAt      int64    `json:"createdAt"`
}

// Intent is a normalized order snapshot. The concrete type is one of
// OpenDutchIntentV1, FilledDutchIntentV1, OpenDutchIntentV2 or FilledDutchIntentV2.
type Intent interface {
	Base() IntentBase
	Type() OrderType
	Version() Version
	Status() OrderStatus
	isIntent()
}

// OpenDutchIntentV1 is an unfilled V1 order
type OpenDutchIntentV1 struct {
	IntentBase
}

// FilledDutchIntentV1 is a settled V1 order
type FilledDutchIntentV1 struct {
	IntentBase
	Settlements []Settlement
	TxHash      string
}

// OpenDutchIntentV2 is an unfilled V2 order; Filler is the cosigner-assigned exclusive filler
type OpenDutchIntentV2 struct {
	IntentBase
}

// FilledDutchIntentV2 is a settled V2 order. Filler holds the actual filler once enriched.
type FilledDutchIntentV2 struct {
	IntentBase
	TxHash string
}

var (
	_ Intent = OpenDutchIntentV1{}
	_ Intent = FilledDutchIntentV1{}
	_ Intent = OpenDutchIntentV2{}
	_ Intent = FilledDutchIntentV2{}
)

func (i OpenDutchIntentV1) Base() IntentBase    { return i.IntentBase }
func (i OpenDutchIntentV1) Type() OrderType     { return OrderTypeDutch }
func (i OpenDutchIntentV1) Version() Version    { return VersionV1 }
func (i OpenDutchIntentV1) Status() OrderStatus { return OrderStatusOpen }
func (OpenDutchIntentV1) isIntent()             {}

func (i FilledDutchIntentV1) Base() IntentBase    { return i.IntentBase }
func (i FilledDutchIntentV1) Type() OrderType     { return OrderTypeDutch }
func (i FilledDutchIntentV1) Version() Version    { return VersionV1 }
func (i FilledDutchIntentV1) Status() OrderStatus { return OrderStatusFilled }
func (FilledDutchIntentV1) isIntent()             {}

func (i OpenDutchIntentV2) Base() IntentBase    { return i.IntentBase }
func (i OpenDutchIntentV2) Type() OrderType     { return OrderTypeDutchV2 }
func (i OpenDutchIntentV2) Version() Version    { return VersionV2 }
func (i OpenDutchIntentV2) Status() OrderStatus { return OrderStatusOpen }
func (OpenDutchIntentV2) isIntent()             {}

func (i FilledDutchIntentV2) Base() IntentBase    { return i.IntentBase }
func (i FilledDutchIntentV2) Type() OrderType     { return OrderTypeDutchV2 }
func (i FilledDutchIntentV2) Version() Version    { return VersionV2 }
func (i FilledDutchIntentV2) Status() OrderStatus { return OrderStatusFilled }
func (FilledDutchIntentV2) isIntent()             {}

// WithFiller returns a copy of the intent with the filler replaced
func (i FilledDutchIntentV2) WithFiller(filler string) FilledDutchIntentV2 {
	i.Filler = filler
	if i.Outputs != nil {
		i.Outputs = append([]Output(nil), i.Outputs...)
	}
	return i
}

// v1Record and v2Record are the flat wire shapes of the intent variants
type v1Record struct {
	IntentBase
	OrderStatus OrderStatus  `json:"orderStatus"`
	Type        OrderType    `json:"type"`
	Version     Version      `json:"version"`
	Settlements []Settlement `json:"settlements"`
	TxHash      *string      `json:"txHash"`
}

type v2Record struct {
	IntentBase
	OrderStatus OrderStatus `json:"orderStatus"`
	Type        OrderType   `json:"type"`
	Version     Version     `json:"version"`
	TxHash      *string     `json:"txHash"`
}

func (i OpenDutchIntentV1) MarshalJSON() ([]byte, error) {
	return json.Marshal(v1Record{
		IntentBase:  i.IntentBase,
		OrderStatus: OrderStatusOpen,
		Type:        OrderTypeDutch,
		Version:     VersionV1,
	})
}

func (i FilledDutchIntentV1) MarshalJSON() ([]byte, error) {
	txHash := i.TxHash
	settlements := i.Settlements
	if settlements == nil {
		settlements = []Settlement{}
	}
	return json.Marshal(v1Record{
		IntentBase:  i.IntentBase,
		OrderStatus: OrderStatusFilled,
		Type:        OrderTypeDutch,
		Version:     VersionV1,
		Settlements: settlements,
		TxHash:      &txHash,
	})
}

func (i OpenDutchIntentV2) MarshalJSON() ([]byte, error) {
	return json.Marshal(v2Record{
		IntentBase:  i.IntentBase,
		OrderStatus: OrderStatusOpen,
		Type:        OrderTypeDutchV2,
		Version:     VersionV2,
	})
}

func (i FilledDutchIntentV2) MarshalJSON() ([]byte, error) {
	txHash := i.TxHash
	return json.Marshal(v2Record{
		IntentBase:  i.IntentBase,
		OrderStatus: OrderStatusFilled,
		Type:        OrderTypeDutchV2,
		Version:     VersionV2,
		TxHash:      &txHash,
	})
}

// UnmarshalIntent decodes a flat intent record into its concrete variant.
// Filled records must carry a txHash, and filled V1 records their settlements.
func UnmarshalIntent(data []byte) (Intent, error) {
	var header struct {
		Version     Version     `json:"version"`
		OrderStatus OrderStatus `json:"orderStatus"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to decode intent header: %v", err)
	}

	switch header.Version {
	case VersionV1:
		var rec v1Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode v1 intent: %v", err)
		}
		if rec.Type != "" && rec.Type != OrderTypeDutch {
			return nil, fmt.Errorf("v1 intent %s has type %s", rec.Hash, rec.Type)
		}
		switch rec.OrderStatus {
		case OrderStatusOpen:
			if rec.TxHash != nil || rec.Settlements != nil {
				return nil, fmt.Errorf("open v1 intent %s carries fill fields", rec.Hash)
			}
			return OpenDutchIntentV1{IntentBase: rec.IntentBase}, nil
		case OrderStatusFilled:
			if rec.TxHash == nil || *rec.TxHash == "" {
				return nil, fmt.Errorf("filled v1 intent %s has no txHash", rec.Hash)
			}
			if rec.Settlements == nil {
				return nil, fmt.Errorf("filled v1 intent %s has no settlements", rec.Hash)
			}
			return FilledDutchIntentV1{IntentBase: rec.IntentBase, Settlements: rec.Settlements, TxHash: *rec.TxHash}, nil
		}
	case VersionV2:
		var rec v2Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode v2 intent: %v", err)
		}
		if rec.Type != "" && rec.Type != OrderTypeDutchV2 {
			return nil, fmt.Errorf("v2 intent %s has type %s", rec.Hash, rec.Type)
		}
		switch rec.OrderStatus {
		case OrderStatusOpen:
			if rec.TxHash != nil {
				return nil, fmt.Errorf("open v2 intent %s carries a txHash", rec.Hash)
			}
			return OpenDutchIntentV2{IntentBase: rec.IntentBase}, nil
		case OrderStatusFilled:
			if rec.TxHash == nil || *rec.TxHash == "" {
				return nil, fmt.Errorf("filled v2 intent %s has no txHash", rec.Hash)
			}
			return FilledDutchIntentV2{IntentBase: rec.IntentBase, TxHash: *rec.TxHash}, nil
		}
	default:
		return nil, fmt.Errorf("unknown intent version: %d", header.Version)
	}

	return nil, fmt.Errorf("unknown intent status: %s", header.OrderStatus)
}
