// Package cmd holds the trainer's subcommands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"StockPulse/internal/repository"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	applogger "StockPulse/pkg/logger"
)

var (
	cfgFile string
	envFile string
	verbose bool

	cfg *config.Config
	log *applogger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "train",
	Short: "StockPulse model trainer",
	Long: `Fits the linear next-close model on daily bars and writes the JSON
artifact the web app loads at startup.

Commands:
    csv         fit on a CSV file
    import      load a CSV file into ClickHouse
    clickhouse  fit on bars stored in ClickHouse
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Close()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file, ignored when absent")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clickhouseCmd)
}

func initConfig() error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("dotenv %s: %w", envFile, err)
	}

	c, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	level := "info"
	if verbose {
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	log = l
	return nil
}

// openHistory connects to ClickHouse and makes sure the bars table exists.
func openHistory(ctx context.Context) (*pkgch.Client, *repository.CHHistoryStore, error) {
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithHTTP(ch.UseHTTP),
	)
	if err != nil {
		return nil, nil, err
	}

	store, err := repository.NewCHHistoryStore(client, ch.Table, log)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if err := client.InitSchema(ctx, store.Schema()); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, store, nil
}

func symbolOrDefault(s string) string {
	if s == "" {
		return cfg.Market.DefaultSymbol
	}
	return s
}

func outputOrDefault(s string) string {
	if s == "" {
		return cfg.Model.Path
	}
	return s
}
