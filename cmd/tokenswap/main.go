package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tokenSwap/internal/replay"
	"tokenSwap/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "tokenswap",
		Short:        "Fixed-rate token swap pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply an operation script to the pool engine",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("events", "./data/events.jsonl", "output events JSONL")
	replayCmd.Flags().String("errors", "./data/operation_errors.jsonl", "rejected operations JSONL")
	replayCmd.Flags().String("state-file", "./data/state.json", "state file path; empty stores state in Postgres")
	replayCmd.Flags().String("state-name", "tokenswap", "state row name when stored in Postgres")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	replayCmd.Flags().String("custody", "", "custody account address")
	replayCmd.Flags().StringSlice("admin", nil, "bootstrap admin addresses (comma-separated)")
	replayCmd.Flags().String("curve", "anchored_product", "pricing curve (anchored_product, fixed_rate)")
	replayCmd.Flags().Bool("global-pairs", false, "allow one open pool per token pair across all providers")
	replayCmd.Flags().Int("batch-size", 100, "operations per flush")
	replayCmd.Flags().Bool("reconcile", true, "check custody against pool reserves after the run")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare pool reserves with on-chain custody balances",
		RunE:  runReconcile,
	}

	reconcileCmd.Flags().String("rpc", "", "RPC URL")
	reconcileCmd.Flags().String("state-file", "./data/state.json", "state file path; empty reads state from Postgres")
	reconcileCmd.Flags().String("state-name", "tokenswap", "state row name when stored in Postgres")
	reconcileCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	reconcileCmd.Flags().String("custody", "", "custody account address; defaults to the one in state")
	reconcileCmd.Flags().Uint64("block", 0, "block height to read balances at, 0 means latest")
	reconcileCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	reconcileCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	reconcileCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reconcileCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a trade against given reserves without touching state",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("reserve-a", "", "reserve of token A (base units)")
	quoteCmd.Flags().String("reserve-b", "", "reserve of token B (base units)")
	quoteCmd.Flags().Uint64("rate-ppm", 0, "exchange rate, token A per token B, in ppm")
	quoteCmd.Flags().Uint64("tolerance-ppm", 0, "slippage tolerance in ppm")
	quoteCmd.Flags().String("amount", "", "input amount (base units)")
	quoteCmd.Flags().String("direction", "buy", "buy (A in, B out) or sell (B in, A out)")
	quoteCmd.Flags().String("curve", "anchored_product", "pricing curve (anchored_product, fixed_rate)")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

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

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", name, value)
	}
	return common.HexToAddress(value), nil
}

// openStateStore prefers the state file and falls back to Postgres.
func openStateStore(ctx context.Context, stateFile, pgDSN, name string) (replay.StateStore, *postgres.Store, error) {
	var store *postgres.Store
	if pgDSN != "" {
		var err error
		store, err = postgres.NewStore(ctx, pgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}
	if stateFile != "" {
		return &replay.FileStateStore{Path: stateFile}, store, nil
	}
	if store == nil {
		return nil, nil, fmt.Errorf("either state-file or pg-dsn is required")
	}
	return &replay.DBStateStore{Store: store, Name: name}, store, nil
}
