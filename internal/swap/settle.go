package swap

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tokenSwap/internal/ledger"
)

// settle moves funds for one operation as a unit. Zero legs are skipped.
// Ledgers implementing ledger.Batcher apply the batch atomically; others
// are driven leg by leg and completed legs are reversed on failure.
func (e *Engine) settle(ctx context.Context, legs ...ledger.Transfer) error {
	transfers := make([]ledger.Transfer, 0, len(legs))
	for _, leg := range legs {
		if leg.Amount == nil || leg.Amount.IsZero() {
			continue
		}
		transfers = append(transfers, leg)
	}
	if len(transfers) == 0 {
		return nil
	}

	if batcher, ok := e.ledger.(ledger.Batcher); ok {
		return batcher.TransferBatch(ctx, transfers)
	}

	for i, tr := range transfers {
		if err := e.move(ctx, tr); err != nil {
			return e.rollback(ctx, transfers[:i], err)
		}
	}
	return nil
}

func (e *Engine) rollback(ctx context.Context, done []ledger.Transfer, cause error) error {
	var errs error
	for i := len(done) - 1; i >= 0; i-- {
		rev := done[i]
		rev.Out = !rev.Out
		if err := e.move(ctx, rev); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rollback %s %s: %w", rev.Token.Hex(), rev.Account.Hex(), err))
		}
	}
	if errs != nil {
		e.logger.Error("settlement rollback incomplete", zap.Error(errs), zap.NamedError("cause", cause))
		return multierr.Append(cause, errs)
	}
	return cause
}

func (e *Engine) move(ctx context.Context, tr ledger.Transfer) error {
	if tr.Out {
		return e.ledger.TransferOut(ctx, tr.Token, tr.Account, tr.Amount)
	}
	return e.ledger.TransferIn(ctx, tr.Token, tr.Account, tr.Amount)
}

func pull(token, from common.Address, amount *uint256.Int) ledger.Transfer {
	return ledger.Transfer{Token: token, Account: from, Amount: amount}
}

func push(token, to common.Address, amount *uint256.Int) ledger.Transfer {
	return ledger.Transfer{Token: token, Account: to, Amount: amount, Out: true}
}
