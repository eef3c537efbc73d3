package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReactorABI is the ABI of the events emitted by a UniswapX reactor
const ReactorABI = `[
	{
		"anonymous": false,
		"inputs": [
			{
				"indexed": true,
				"internalType": "bytes32",
				"name": "orderHash",
				"type": "bytes32"
			},
			{
				"indexed": true,
				"internalType": "address",
				"name": "filler",
				"type": "address"
			},
			{
				"indexed": true,
				"internalType": "address",
				"name": "swapper",
				"type": "address"
			},
			{
				"indexed": false,
				"internalType": "uint256",
				"name": "nonce",
				"type": "uint256"
			}
		],
		"name": "Fill",
		"type": "event"
	}
]`

// FillEventName is the name of the reactor settlement event
const FillEventName = "Fill"

// ReactorFilterer is a log filtering Go binding around reactor contract events.
type ReactorFilterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
	abi      abi.ABI
}

// NewReactorFilterer creates a new log filterer instance of Reactor, bound to a specific deployed contract.
// The filterer may be nil when only ParseFill is needed.
func NewReactorFilterer(address common.Address, filterer bind.ContractFilterer) (*ReactorFilterer, error) {
	parsed, err := abi.JSON(strings.NewReader(ReactorABI))
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(address, parsed, nil, nil, filterer)
	return &ReactorFilterer{contract: contract, abi: parsed}, nil
}

// FillTopic returns the topic hash identifying Fill logs
func (_Reactor *ReactorFilterer) FillTopic() common.Hash {
	return _Reactor.abi.Events[FillEventName].ID
}

// ReactorFill represents a Fill event raised by the Reactor contract.
type ReactorFill struct {
	OrderHash [32]byte
	Filler    common.Address
	Swapper   common.Address
	Nonce     *big.Int
	Raw       types.Log // Blockchain specific contextual infos
}

// ReactorFillIterator is returned from FilterFill and is used to iterate over the raw logs and unpacked data for Fill events raised by the Reactor contract.
type ReactorFillIterator struct {
	Event *ReactorFill // Event containing the contract specifics and raw log

	contract *bind.BoundContract // Generic contract to use for unpacking event data
	event    string              // Event name to use for unpacking event data

	logs chan types.Log        // Log channel receiving the found contract events
	sub  ethereum.Subscription // Subscription for errors, completion and termination
	done bool                  // Whether the subscription completed delivering logs
	fail error                 // Occurred error to stop iteration
}

// Next advances the iterator to the subsequent event, returning whether there
// are any more events found. In case of a retrieval or parsing error, false is
// returned and Error() can be queried for the exact failure.
func (it *ReactorFillIterator) Next() bool {
	if it.fail != nil {
		return false
	}
	if it.done {
		select {
		case log := <-it.logs:
			return it.unpack(log)
		default:
			return false
		}
	}
	select {
	case log := <-it.logs:
		return it.unpack(log)
	case err := <-it.sub.Err():
		it.done = true
		it.fail = err
		return it.Next()
	}
}

func (it *ReactorFillIterator) unpack(log types.Log) bool {
	it.Event = new(ReactorFill)
	if err := it.contract.UnpackLog(it.Event, it.event, log); err != nil {
		it.fail = err
		return false
	}
	it.Event.Raw = log
	return true
}

// Error returns any retrieval or parsing error occurred during filtering.
func (it *ReactorFillIterator) Error() error {
	return it.fail
}

// Close terminates the iteration process, releasing any pending underlying
// resources.
func (it *ReactorFillIterator) Close() error {
	it.sub.Unsubscribe()
	return nil
}

// FilterFill is a free log retrieval operation binding the contract event Fill.
//
// Solidity: event Fill(bytes32 indexed orderHash, address indexed filler, address indexed swapper, uint256 nonce)
func (_Reactor *ReactorFilterer) FilterFill(opts *bind.FilterOpts, orderHash [][32]byte, filler []common.Address, swapper []common.Address) (*ReactorFillIterator, error) {
	var orderHashRule []interface{}
	for _, orderHashItem := range orderHash {
		orderHashRule = append(orderHashRule, orderHashItem)
	}
	var fillerRule []interface{}
	for _, fillerItem := range filler {
		fillerRule = append(fillerRule, fillerItem)
	}
	var swapperRule []interface{}
	for _, swapperItem := range swapper {
		swapperRule = append(swapperRule, swapperItem)
	}

	logs, sub, err := _Reactor.contract.FilterLogs(opts, FillEventName, orderHashRule, fillerRule, swapperRule)
	if err != nil {
		return nil, err
	}
	return &ReactorFillIterator{contract: _Reactor.contract, event: FillEventName, logs: logs, sub: sub}, nil
}

// ParseFill is a log parse operation binding the contract event Fill.
//
// Solidity: event Fill(bytes32 indexed orderHash, address indexed filler, address indexed swapper, uint256 nonce)
func (_Reactor *ReactorFilterer) ParseFill(log types.Log) (*ReactorFill, error) {
	event := new(ReactorFill)
	if err := _Reactor.contract.UnpackLog(event, FillEventName, log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
