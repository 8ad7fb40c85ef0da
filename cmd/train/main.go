// Command train fits the next-close model offline.
//
//	go run ./cmd/train csv --input data/TCS.csv
//	go run ./cmd/train import --input data/TCS.csv --symbol TCS.NS
//	go run ./cmd/train clickhouse --symbol TCS.NS --from 2023-01-01
package main

import (
	"os"

	"StockPulse/cmd/train/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
