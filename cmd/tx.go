package cmd

import (
	"github.com/spf13/cobra"
)

func newTxCommand() *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx <hash>",
		Short: "Fetch a transaction by hash and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runTx,
	}
	addChainFlags(txCmd)
	return txCmd
}

func runTx(cmd *cobra.Command, args []string) error {
	chainID, err := chainIDFromFlags(cmd)
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

	tx, err := client.TransactionByHash(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, tx)
}
