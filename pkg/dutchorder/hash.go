package dutchorder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	orderInfoType   = "OrderInfo(address reactor,address swapper,uint256 nonce,uint256 deadline,address additionalValidationContract,bytes additionalValidationData)"
	dutchOutputType = "DutchOutput(address token,uint256 startAmount,uint256 endAmount,address recipient)"

	// Referenced types are appended in alphabetical order
	exclusiveDutchOrderType = "ExclusiveDutchOrder(OrderInfo info,uint256 decayStartTime,uint256 decayEndTime,address exclusiveFiller,uint256 exclusivityOverrideBps,address inputToken,uint256 inputStartAmount,uint256 inputEndAmount,DutchOutput[] outputs)" +
		dutchOutputType + orderInfoType
)

var (
	// OrderInfoTypeHash is the keccak256 hash of the OrderInfo type definition
	OrderInfoTypeHash = crypto.Keccak256Hash([]byte(orderInfoType))

	// DutchOutputTypeHash is the keccak256 hash of the DutchOutput type definition
	DutchOutputTypeHash = crypto.Keccak256Hash([]byte(dutchOutputType))

	// ExclusiveDutchOrderTypeHash is the keccak256 hash of the order witness type definition
	ExclusiveDutchOrderTypeHash = crypto.Keccak256Hash([]byte(exclusiveDutchOrderType))
)

// Hash returns the EIP-712 struct hash of the order witness, which is the order hash
func (o *Order) Hash() common.Hash {
	outputHashes := make([]byte, 0, len(o.Outputs)*common.HashLength)
	for _, output := range o.Outputs {
		outputHashes = append(outputHashes, hashOutput(output).Bytes()...)
	}

	return crypto.Keccak256Hash(
		ExclusiveDutchOrderTypeHash.Bytes(),
		hashInfo(o.Info).Bytes(),
		encodeUint(o.DecayStartTime),
		encodeUint(o.DecayEndTime),
		encodeAddress(o.ExclusiveFiller),
		encodeUint(o.ExclusivityOverrideBps),
		encodeAddress(o.Input.Token),
		encodeUint(o.Input.StartAmount),
		encodeUint(o.Input.EndAmount),
		crypto.Keccak256(outputHashes),
	)
}

func hashInfo(info OrderInfo) common.Hash {
	return crypto.Keccak256Hash(
		OrderInfoTypeHash.Bytes(),
		encodeAddress(info.Reactor),
		encodeAddress(info.Swapper),
		encodeUint(info.Nonce),
		encodeUint(info.Deadline),
		encodeAddress(info.AdditionalValidationContract),
		crypto.Keccak256(info.AdditionalValidationData),
	)
}

func hashOutput(output DutchOutput) common.Hash {
	return crypto.Keccak256Hash(
		DutchOutputTypeHash.Bytes(),
		encodeAddress(output.Token),
		encodeUint(output.StartAmount),
		encodeUint(output.EndAmount),
		encodeAddress(output.Recipient),
	)
}

func encodeAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func encodeUint(v *big.Int) []byte {
	if v == nil {
		return make([]byte, 32)
	}
	return common.LeftPadBytes(v.Bytes(), 32)
}
