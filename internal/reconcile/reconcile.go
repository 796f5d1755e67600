package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"tokenSwap/internal/ledger"
	"tokenSwap/internal/model"
	"tokenSwap/internal/swap"
)

// MetaSource resolves token metadata for report formatting.
type MetaSource interface {
	TokenMeta(ctx context.Context, token common.Address, logger *zap.Logger) (model.TokenMeta, error)
}

// Options tunes a Reconciler.
type Options struct {
	// Meta is optional; without it amounts are reported unscaled.
	Meta       MetaSource
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Reconciler checks that the custody account holds exactly the sum of all
// open pool reserves, per token.
type Reconciler struct {
	source  ledger.BalanceReader
	custody common.Address
	opts    Options
	logger  *zap.Logger
}

// Report is the outcome of one reconciliation pass.
type Report struct {
	Tokens     int
	Mismatches []model.ReserveMismatch
}

// Balanced reports whether every token matched.
func (r Report) Balanced() bool {
	return len(r.Mismatches) == 0
}

func New(source ledger.BalanceReader, custody common.Address, opts Options) (*Reconciler, error) {
	if source == nil {
		return nil, fmt.Errorf("balance source is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{source: source, custody: custody, opts: opts, logger: logger}, nil
}

// Check sums reserves of open pools and compares each token total with the
// custody balance. Tokens are checked in address order.
func (r *Reconciler) Check(ctx context.Context, pools []swap.Pool) (Report, error) {
	totals := SumReserves(pools)
	tokens := make([]common.Address, 0, len(totals))
	for token := range totals {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return bytes.Compare(tokens[i][:], tokens[j][:]) < 0
	})

	report := Report{Tokens: len(tokens)}
	for _, token := range tokens {
		var held *uint256.Int
		err := withRetry(ctx, r.opts.MaxRetries, r.opts.RetryDelay, func(ctx context.Context) error {
			bal, err := r.source.BalanceOf(ctx, token, r.custody)
			if err != nil {
				r.logger.Debug("custody balance read failed", zap.String("token", token.Hex()), zap.Error(err))
				return err
			}
			held = bal
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("custody balance %s: %w", token.Hex(), err)
		}

		reserves := totals[token]
		if reserves.Eq(held) {
			continue
		}
		mismatch := r.describe(ctx, token, reserves, held)
		r.logger.Warn("reserve mismatch",
			zap.String("token", mismatch.Token),
			zap.String("reserves", mismatch.Reserves),
			zap.String("custody", mismatch.Custody),
		)
		report.Mismatches = append(report.Mismatches, mismatch)
	}
	return report, nil
}

func (r *Reconciler) describe(ctx context.Context, token common.Address, reserves, held *uint256.Int) model.ReserveMismatch {
	m := model.ReserveMismatch{
		Token:    token.Hex(),
		Reserves: reserves.Dec(),
		Custody:  held.Dec(),
	}
	if r.opts.Meta != nil {
		meta, err := r.opts.Meta.TokenMeta(ctx, token, r.logger)
		if err != nil {
			r.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		} else {
			m.Symbol = meta.Symbol
			m.Decimals = meta.Decimals
		}
	}
	m.Formatted = fmt.Sprintf("reserves %s, custody %s",
		formatTokenAmount(reserves, m.Decimals), formatTokenAmount(held, m.Decimals))
	return m
}

// SumReserves totals reserves of open pools per token.
func SumReserves(pools []swap.Pool) map[common.Address]*uint256.Int {
	totals := make(map[common.Address]*uint256.Int)
	add := func(token common.Address, amount *uint256.Int) {
		total, ok := totals[token]
		if !ok {
			total = new(uint256.Int)
			totals[token] = total
		}
		total.Add(total, amount)
	}
	for _, p := range pools {
		if p.Status != model.PoolOpen {
			continue
		}
		add(p.TokenA, p.ReserveA)
		add(p.TokenB, p.ReserveB)
	}
	return totals
}
