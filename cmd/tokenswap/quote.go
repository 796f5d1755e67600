package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenSwap/internal/config"
	"tokenSwap/internal/pricing"
)

type quoteOutput struct {
	Curve           string `json:"curve"`
	Direction       string `json:"direction"`
	AmountIn        string `json:"amount_in"`
	Expected        string `json:"expected"`
	AmountOut       string `json:"amount_out"`
	WithinTolerance bool   `json:"within_tolerance"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.ExchangeRatePPM == 0 {
		return fmt.Errorf("rate-ppm is required")
	}
	if cfg.SlippageTolerancePPM > pricing.PPM {
		return fmt.Errorf("tolerance-ppm must not exceed %d", pricing.PPM)
	}
	reserveA, err := pricing.ParseAmount(cfg.ReserveA)
	if err != nil {
		return fmt.Errorf("reserve-a: %w", err)
	}
	reserveB, err := pricing.ParseAmount(cfg.ReserveB)
	if err != nil {
		return fmt.Errorf("reserve-b: %w", err)
	}
	amount, err := pricing.ParseAmount(cfg.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	dir, err := pricing.ParseDirection(cfg.Direction)
	if err != nil {
		return err
	}
	curve, err := pricing.CurveByName(cfg.Curve)
	if err != nil {
		return err
	}

	expected, err := pricing.Expected(cfg.ExchangeRatePPM, amount, dir)
	if err != nil {
		return err
	}
	out, err := curve.Quote(reserveA, reserveB, cfg.ExchangeRatePPM, amount, dir)
	if err != nil {
		return err
	}

	logger.Debug("quote computed",
		zap.String("curve", curve.Name()),
		zap.String("direction", dir.String()),
		zap.String("expected", expected.Dec()),
		zap.String("amount_out", out.Dec()),
	)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(quoteOutput{
		Curve:           curve.Name(),
		Direction:       dir.String(),
		AmountIn:        amount.Dec(),
		Expected:        expected.Dec(),
		AmountOut:       out.Dec(),
		WithinTolerance: pricing.WithinTolerance(expected, out, cfg.SlippageTolerancePPM),
	})
}
