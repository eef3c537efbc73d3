package models

// RawDutchIntentV1 is a V1 order as returned by the order-book service
type RawDutchIntentV1 struct {
	EncodedOrder   string       `json:"encodedOrder"`
	Signature      string       `json:"signature,omitempty"`
	OrderHash      string       `json:"orderHash,omitempty"`
	OrderStatus    OrderStatus  `json:"orderStatus"`
	ChainID        int          `json:"chainId"`
	CreatedAt      int64        `json:"createdAt"`
	TxHash         *string      `json:"txHash,omitempty"`
	SettledAmounts []Settlement `json:"settledAmounts,omitempty"`
}

// CosignerData holds the auction parameters countersigned for a V2 order
type CosignerData struct {
	DecayStartTime  int64    `json:"decayStartTime"`
	DecayEndTime    int64    `json:"decayEndTime"`
	ExclusiveFiller string   `json:"exclusiveFiller"`
	InputOverride   string   `json:"inputOverride,omitempty"`
	OutputOverrides []string `json:"outputOverrides,omitempty"`
}

// RawDutchIntentV2 is a V2 order as returned by the order-book service
type RawDutchIntentV2 struct {
	OrderHash    string       `json:"orderHash"`
	Type         OrderType    `json:"type,omitempty"`
	EncodedOrder string       `json:"encodedOrder,omitempty"`
	Signature    string       `json:"signature,omitempty"`
	Nonce        string       `json:"nonce,omitempty"`
	Input        Input        `json:"input"`
	Outputs      []Output     `json:"outputs"`
	CosignerData CosignerData `json:"cosignerData"`
	Cosignature  string       `json:"cosignature,omitempty"`
	Swapper      string       `json:"swapper"`
	ChainID      int          `json:"chainId"`
	OrderStatus  OrderStatus  `json:"orderStatus"`
	CreatedAt    int64        `json:"createdAt"`
	TxHash       *string      `json:"txHash,omitempty"`
}
