package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

const defaultScanBlocks = 1000

func newFillsCommand() *cobra.Command {
	fillsCmd := &cobra.Command{
		Use:   "fills",
		Short: "Scan the reactor Fill events of a block range and print them as JSON",
		RunE:  runFills,
	}
	addChainFlags(fillsCmd)
	fillsCmd.Flags().Uint64("from-block", 0, "start block (inclusive), 0 means --blocks before the latest block")
	fillsCmd.Flags().Uint64("to-block", 0, "end block (inclusive), 0 means latest")
	fillsCmd.Flags().Uint64("blocks", defaultScanBlocks, "number of recent blocks to scan when --from-block is not set")
	fillsCmd.Flags().StringSlice("order-hash", nil, "only return fills of these order hashes (comma-separated)")
	return fillsCmd
}

func runFills(cmd *cobra.Command, _ []string) error {
	chainID, err := chainIDFromFlags(cmd)
	if err != nil {
		return err
	}
	fromBlock, _ := cmd.Flags().GetUint64("from-block")
	toBlock, _ := cmd.Flags().GetUint64("to-block")
	blocks, _ := cmd.Flags().GetUint64("blocks")
	rawHashes, _ := cmd.Flags().GetStringSlice("order-hash")

	orderHashes, err := parseOrderHashes(rawHashes)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	client, err := a.chainClient(chainID)
	if err != nil {
		return err
	}

	if fromBlock == 0 {
		latest, err := client.GetLatestBlockNumber(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get latest block: %v", err)
		}
		fromBlock = scanStart(latest, toBlock, blocks)
	}

	var end *uint64
	if toBlock != 0 {
		if toBlock < fromBlock {
			return fmt.Errorf("to-block %d is before from-block %d", toBlock, fromBlock)
		}
		end = &toBlock
	}

	events, err := client.ScanFillEvents(cmd.Context(), fromBlock, end, orderHashes)
	if err != nil {
		return err
	}
	a.logger.InfoWithChain(chainID, "Found %d fill events from block %d", len(events), fromBlock)
	return printJSON(cmd, events)
}

// scanStart returns the first block of a window of the given size ending at toBlock or latest
func scanStart(latest, toBlock, blocks uint64) uint64 {
	end := latest
	if toBlock != 0 && toBlock < latest {
		end = toBlock
	}
	if blocks == 0 || blocks > end {
		return 0
	}
	return end - blocks + 1
}

func parseOrderHashes(raw []string) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(raw))
	for _, s := range raw {
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != common.HashLength {
			return nil, fmt.Errorf("invalid order hash %q", s)
		}
		hashes = append(hashes, common.BytesToHash(b))
	}
	return hashes, nil
}
