package models

import "math/big"

// FillEvent is a reactor Fill log of a settlement transaction
type FillEvent struct {
	OrderHash string   `json:"orderHash"`
	Filler    string   `json:"filler"`
	Swapper   string   `json:"swapper"`
	Nonce     *big.Int `json:"nonce"`
	Reactor   string   `json:"reactor"`
	TxHash    string   `json:"txHash"`
	LogIndex  uint     `json:"logIndex"`
}
