package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "ammd",
		Short:        "AMM pool settlement engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an operation journal through the engine",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("ops", "", "input operations JSONL")
	replayCmd.Flags().String("events-out", "./data/events.jsonl", "output events JSONL")
	replayCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	replayCmd.Flags().Int("batch-size", 1000, "operations per flush")
	replayCmd.Flags().Int("max-retries", 5, "maximum storage retry attempts")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial storage retry backoff")
	replayCmd.Flags().String("fee-manager", "", "fee manager address")
	replayCmd.Flags().String("pauser", "", "pauser address")
	replayCmd.Flags().Uint32("volatile-fee-bps", 30, "default volatile pool fee (bps)")
	replayCmd.Flags().Uint32("stable-fee-bps", 5, "default stable pool fee (bps)")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a trade against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("reserve-in", "", "input-side reserve")
	quoteCmd.Flags().String("reserve-out", "", "output-side reserve")
	quoteCmd.Flags().String("amount-in", "", "input amount")
	quoteCmd.Flags().Uint32("fee-bps", 30, "swap fee (bps)")
	quoteCmd.Flags().Bool("stable", false, "use the stable curve")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate an event journal into per-pool totals",
		RunE:  runReport,
	}

	reportCmd.Flags().String("in", "", "input events JSONL")
	reportCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	reportCmd.Flags().String("out", "", "output JSONL path (default stdout)")
	reportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
