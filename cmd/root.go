package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand returns the intentscope command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "intentscope",
		Short:        "Normalize Dutch auction intents from the order book",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newFetchCommand())
	root.AddCommand(newTxCommand())
	root.AddCommand(newFillsCommand())

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
