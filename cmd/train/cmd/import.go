package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockPulse/internal/usecase"
)

var importFlags struct {
	input  string
	symbol string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a CSV of daily bars into ClickHouse",
	Long: `Writes the complete, dated rows of a CSV into the configured ClickHouse
table. Re-importing the same days replaces them.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFlags.input, "input", "i", "data/TCS.csv", "CSV file to import")
	importCmd.Flags().StringVarP(&importFlags.symbol, "symbol", "s", "", "symbol to store the bars under (default market.default_symbol)")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(importFlags.input)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ctx := cmd.Context()
	client, store, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	symbol := symbolOrDefault(importFlags.symbol)
	n, err := usecase.NewTraining(log).Import(ctx, f, symbol, store)
	if err != nil {
		return err
	}
	cmd.Printf("Imported %d bars for %s\n", n, symbol)
	return nil
}
