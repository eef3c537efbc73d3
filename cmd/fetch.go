package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/speedrun-hq/intentscope/pkg/models"
	"github.com/spf13/cobra"
)

func newFetchCommand() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and print normalized intents as JSON",
		RunE:  runFetch,
	}
	addChainFlags(fetchCmd)
	fetchCmd.Flags().String("order-type", string(models.OrderTypeDutchV2), "order type (Dutch, Dutch_V2)")
	fetchCmd.Flags().String("order-status", string(models.OrderStatusOpen), "order status (open, filled)")
	fetchCmd.Flags().StringArray("param", nil, "extra order-book query parameter as key=value, repeatable")
	return fetchCmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	chainID, err := chainIDFromFlags(cmd)
	if err != nil {
		return err
	}
	orderType, _ := cmd.Flags().GetString("order-type")
	orderStatus, _ := cmd.Flags().GetString("order-status")
	rawParams, _ := cmd.Flags().GetStringArray("param")

	extra, err := parseExtraParams(rawParams)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.FetchIntents(cmd.Context(), models.FetchOrdersParams{
		ChainID:     chainID,
		OrderType:   models.OrderType(orderType),
		OrderStatus: models.OrderStatus(orderStatus),
		Extra:       extra,
	})
	if err != nil {
		return err
	}
	if result == nil {
		result = []models.Intent{}
	}

	return printJSON(cmd, result)
}

// parseExtraParams splits key=value pairs into a query map
func parseExtraParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	extra := make(map[string]string, len(raw))
	for _, param := range raw {
		key, value, ok := strings.Cut(param, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q, expected key=value", param)
		}
		extra[key] = value
	}
	return extra, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
