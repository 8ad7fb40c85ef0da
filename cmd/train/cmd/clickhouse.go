package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"StockPulse/internal/usecase"
	"StockPulse/pkg/util"
)

var chFlags struct {
	symbol string
	from   string
	to     string
	output string
}

var clickhouseCmd = &cobra.Command{
	Use:   "clickhouse",
	Short: "Fit the model on bars stored in ClickHouse",
	Long: `Reads daily bars for one symbol between --from and --to (inclusive) and
writes the fitted model.

Examples:
  go run ./cmd/train clickhouse --symbol TCS.NS --from 2023-01-01`,
	RunE: runClickHouse,
}

func init() {
	clickhouseCmd.Flags().StringVarP(&chFlags.symbol, "symbol", "s", "", "symbol to train on (default market.default_symbol)")
	clickhouseCmd.Flags().StringVar(&chFlags.from, "from", "", "first day, YYYY-MM-DD (default one year before --to)")
	clickhouseCmd.Flags().StringVar(&chFlags.to, "to", "", "last day, YYYY-MM-DD (default today)")
	clickhouseCmd.Flags().StringVarP(&chFlags.output, "output", "o", "", "model output path (default model.path from config)")
}

func runClickHouse(cmd *cobra.Command, args []string) error {
	to := util.TradingDay(time.Now())
	if chFlags.to != "" {
		t, ok := util.ParseTime(chFlags.to)
		if !ok {
			return fmt.Errorf("invalid --to %q", chFlags.to)
		}
		to = t
	}
	from := to.AddDate(-1, 0, 0)
	if chFlags.from != "" {
		t, ok := util.ParseTime(chFlags.from)
		if !ok {
			return fmt.Errorf("invalid --from %q", chFlags.from)
		}
		from = t
	}

	ctx := cmd.Context()
	client, store, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := usecase.NewTraining(log).FromHistory(ctx, store, symbolOrDefault(chFlags.symbol), from, to, outputOrDefault(chFlags.output))
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}
