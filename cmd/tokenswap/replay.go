package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/config"
	"tokenSwap/internal/model"
	"tokenSwap/internal/pricing"
	"tokenSwap/internal/reconcile"
	"tokenSwap/internal/replay"
	"tokenSwap/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	custody, err := parseAddress("custody", cfg.Custody)
	if err != nil {
		return err
	}
	curve, err := pricing.CurveByName(cfg.Curve)
	if err != nil {
		return err
	}
	roles, err := acl.ParseMembers(cfg.Roles)
	if err != nil {
		return err
	}
	for _, admin := range cfg.Admins {
		addr, err := parseAddress("admin", admin)
		if err != nil {
			return err
		}
		roles[acl.Admin] = append(roles[acl.Admin], addr)
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

	var restored *model.State
	if state, ok, err := stateStore.Load(ctx); err != nil {
		return err
	} else if ok {
		restored = &state
		logger.Info("resume from state", zap.Uint64("last_seq", state.LastSeq), zap.Int("pools", len(state.Engine.Pools)))
		if len(roles) > 0 {
			logger.Info("configured roles ignored, using roles from state")
		}
	}

	session, err := replay.NewSession(restored, replay.SessionConfig{
		Custody:     custody,
		Roles:       roles,
		Curve:       curve,
		GlobalPairs: cfg.GlobalPairs,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	eventsFile := storage.NewJsonlStorage(cfg.Events)
	errorsFile := storage.NewJsonlStorage(cfg.Errors)
	events := storage.Multi{eventsFile}
	errs := storage.MultiErrorSink{errorsFile}
	var pools replay.PoolSink
	if store != nil {
		events = append(events, store)
		errs = append(errs, store)
		pools = store
	}

	inputFile, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	logger.Info("replay start",
		zap.String("in", cfg.Input),
		zap.String("events", cfg.Events),
		zap.String("errors", cfg.Errors),
		zap.String("state_file", cfg.StateFile),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("custody", custody.Hex()),
		zap.String("curve", curve.Name()),
		zap.Bool("global_pairs", cfg.GlobalPairs),
		zap.Int("batch_size", cfg.BatchSize),
	)

	runner := replay.NewRunner(replay.RunConfig{BatchSize: cfg.BatchSize}, session, events, errs, pools, stateStore, logger)
	summary, err := runner.Run(ctx, inputFile)
	if err != nil {
		return err
	}

	logger.Info("replay complete",
		zap.Int("total", summary.Total),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("events", summary.Events),
		zap.Uint64("last_seq", summary.LastSeq),
	)

	if !cfg.Reconcile {
		return nil
	}
	return reconcileSession(ctx, session, custody, logger)
}

func reconcileSession(ctx context.Context, session *replay.Session, custody common.Address, logger *zap.Logger) error {
	checker, err := reconcile.New(session.Ledger, custody, reconcile.Options{Logger: logger})
	if err != nil {
		return err
	}
	report, err := checker.Check(ctx, session.Engine.Pools())
	if err != nil {
		return err
	}
	if !report.Balanced() {
		return fmt.Errorf("custody out of balance for %d of %d tokens", len(report.Mismatches), report.Tokens)
	}
	logger.Info("custody reconciled", zap.Int("tokens", report.Tokens))
	return nil
}
