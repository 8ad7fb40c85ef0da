package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockPulse/internal/usecase"
)

var csvFlags struct {
	input  string
	output string
	symbol string
}

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Fit the model on a CSV of daily bars",
	Long: `Reads Open, High, Low, Volume and Close columns (any case, extra columns
ignored), skips incomplete rows and writes the fitted model.

Examples:
  go run ./cmd/train csv
  go run ./cmd/train csv --input data/INFY.csv --symbol INFY.NS --output model/infy.json`,
	RunE: runCSV,
}

func init() {
	csvCmd.Flags().StringVarP(&csvFlags.input, "input", "i", "data/TCS.csv", "CSV file to train on")
	csvCmd.Flags().StringVarP(&csvFlags.output, "output", "o", "", "model output path (default model.path from config)")
	csvCmd.Flags().StringVarP(&csvFlags.symbol, "symbol", "s", "", "symbol recorded in the model (default market.default_symbol)")
}

func runCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(csvFlags.input)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	res, err := usecase.NewTraining(log).FromCSV(f, symbolOrDefault(csvFlags.symbol), outputOrDefault(csvFlags.output))
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}

func printResult(cmd *cobra.Command, res *usecase.TrainResult) {
	m := res.Model
	cmd.Printf("Model trained on %d rows (%d skipped), R²=%.4f\n", res.Rows, res.Skipped, m.R2)
	cmd.Printf("  close = %.6f", m.Intercept)
	for i, name := range m.Features {
		cmd.Printf(" + %.6g*%s", m.Coefficients[i], name)
	}
	cmd.Printf("\n  written to %s\n", res.Output)
}
