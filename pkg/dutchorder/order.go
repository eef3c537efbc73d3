package dutchorder

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OrderInfo is the generic order header shared by every reactor order
type OrderInfo struct {
	Reactor                      common.Address
	Swapper                      common.Address
	Nonce                        *big.Int
	Deadline                     *big.Int
	AdditionalValidationContract common.Address
	AdditionalValidationData     []byte
}

// DutchInput is the decaying input of an order
type DutchInput struct {
	Token       common.Address
	StartAmount *big.Int
	EndAmount   *big.Int
}

// DutchOutput is a decaying output of an order
type DutchOutput struct {
	Token       common.Address
	StartAmount *big.Int
	EndAmount   *big.Int
	Recipient   common.Address
}

// Order is a decoded exclusive Dutch order.
// The field order mirrors the ABI tuple, ChainID is not part of the encoding.
type Order struct {
	Info                   OrderInfo
	DecayStartTime         *big.Int
	DecayEndTime           *big.Int
	ExclusiveFiller        common.Address
	ExclusivityOverrideBps *big.Int
	Input                  DutchInput
	Outputs                []DutchOutput
	ChainID                int
}

var orderArguments abi.Arguments

func init() {
	orderType, err := abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "info", Type: "tuple", Components: []abi.ArgumentMarshaling{
			{Name: "reactor", Type: "address"},
			{Name: "swapper", Type: "address"},
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
			{Name: "additionalValidationContract", Type: "address"},
			{Name: "additionalValidationData", Type: "bytes"},
		}},
		{Name: "decayStartTime", Type: "uint256"},
		{Name: "decayEndTime", Type: "uint256"},
		{Name: "exclusiveFiller", Type: "address"},
		{Name: "exclusivityOverrideBps", Type: "uint256"},
		{Name: "input", Type: "tuple", Components: []abi.ArgumentMarshaling{
			{Name: "token", Type: "address"},
			{Name: "startAmount", Type: "uint256"},
			{Name: "endAmount", Type: "uint256"},
		}},
		{Name: "outputs", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "token", Type: "address"},
			{Name: "startAmount", Type: "uint256"},
			{Name: "endAmount", Type: "uint256"},
			{Name: "recipient", Type: "address"},
		}},
	})
	if err != nil {
		panic(fmt.Sprintf("invalid dutch order ABI: %v", err))
	}
	orderArguments = abi.Arguments{{Name: "order", Type: orderType}}
}

// Parser decodes encoded orders. It satisfies the order parser dependency of the V1 decoder.
type Parser struct{}

// Parse decodes an encoded order
func (Parser) Parse(encoded string, chainID int) (*Order, error) {
	return Parse(encoded, chainID)
}

// Parse hex-decodes and ABI-decodes an exclusive Dutch order
func Parse(encoded string, chainID int) (*Order, error) {
	encoded = strings.TrimSpace(encoded)
	if !strings.HasPrefix(encoded, "0x") && !strings.HasPrefix(encoded, "0X") {
		encoded = "0x" + encoded
	}
	data, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode order hex: %v", err)
	}

	values, err := orderArguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack order: %v", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("failed to unpack order: expected 1 value, got %d", len(values))
	}

	order, err := convertOrder(values[0])
	if err != nil {
		return nil, err
	}
	order.ChainID = chainID
	return order, nil
}

// convertOrder copies the anonymous struct produced by the ABI decoder into an Order
func convertOrder(value interface{}) (order *Order, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to convert order: %v", r)
		}
	}()
	return abi.ConvertType(value, new(Order)).(*Order), nil
}

// Encode ABI-encodes the order and returns it as a 0x-prefixed hex string
func Encode(order *Order) (string, error) {
	if order == nil {
		return "", fmt.Errorf("order is nil")
	}
	if order.Outputs == nil {
		o := *order
		o.Outputs = []DutchOutput{}
		order = &o
	}
	data, err := orderArguments.Pack(*order)
	if err != nil {
		return "", fmt.Errorf("failed to pack order: %v", err)
	}
	return hexutil.Encode(data), nil
}
