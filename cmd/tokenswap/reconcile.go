package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenSwap/internal/chain"
	"tokenSwap/internal/config"
	"tokenSwap/internal/reconcile"
	"tokenSwap/internal/swap"
)

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReconcile(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateStore, store, err := openStateStore(ctx, cfg.StateFile, cfg.PGDSN, cfg.StateName)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	state, ok, err := stateStore.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no replay state found")
	}

	custodyHex := cfg.Custody
	if custodyHex == "" {
		custodyHex = state.Ledger.Custody
	}
	custody, err := parseAddress("custody", custodyHex)
	if err != nil {
		return err
	}

	pools := make([]swap.Pool, 0, len(state.Engine.Pools))
	for _, view := range state.Engine.Pools {
		p, err := swap.PoolFromView(view)
		if err != nil {
			return err
		}
		pools = append(pools, p)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	checker, err := reconcile.New(chainClient.AtBlock(cfg.Block), custody, reconcile.Options{
		Meta:       chainClient,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryBackoff,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.Info("reconcile start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("custody", custody.Hex()),
		zap.Uint64("block", cfg.Block),
		zap.Int("pools", len(pools)),
		zap.Uint64("last_seq", state.LastSeq),
	)

	report, err := checker.Check(ctx, pools)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, mismatch := range report.Mismatches {
		if err := enc.Encode(mismatch); err != nil {
			return err
		}
	}
	if !report.Balanced() {
		return fmt.Errorf("custody out of balance for %d of %d tokens", len(report.Mismatches), report.Tokens)
	}
	logger.Info("custody reconciled", zap.Int("tokens", report.Tokens))
	return nil
}
