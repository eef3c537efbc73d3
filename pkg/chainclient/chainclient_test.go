package chainclient

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTxHash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "0x1111111111111111111111111111111111111111111111111111111111111111", true},
		{"missing prefix", "1111111111111111111111111111111111111111111111111111111111111111", false},
		{"too short", "0x1111", false},
		{"not hex", "0xzz11111111111111111111111111111111111111111111111111111111111111", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isTxHash(tc.input))
		})
	}
}

func TestNewTransaction(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	to := common.HexToAddress("0x00000011F84B9aa48e5f8aA8B9897600006289Be")

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(42161),
		Nonce:     5,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      []byte{0xde, 0xad},
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(42161)), key)
	require.NoError(t, err)

	result := newTransaction(signed, false, 42161)
	assert.Equal(t, signed.Hash().Hex(), result.Hash)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), result.From)
	assert.Equal(t, to.Hex(), result.To)
	assert.Equal(t, uint64(5), result.Nonce)
	assert.Equal(t, "0xdead", result.Input)
	assert.Equal(t, 42161, result.ChainID)
	assert.False(t, result.Pending)
}

func TestClientNotConnected(t *testing.T) {
	client := &Client{ChainID: 1}

	_, err := client.GetLatestBlockNumber(context.Background())
	assert.Error(t, err)

	_, err = client.TransactionByHash(context.Background(), "0x1111111111111111111111111111111111111111111111111111111111111111")
	assert.Error(t, err)

	_, err = client.TransactionReceipt(context.Background(), common.Hash{})
	assert.Error(t, err)

	client.Close()
}

func TestNewRequiresRPCURL(t *testing.T) {
	_, err := New(context.Background(), 1, "", "")
	assert.Error(t, err)
}
