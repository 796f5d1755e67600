package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/model"
	"tokenSwap/internal/pricing"
)

// TradeQuote is the outcome of pricing a trade against a pool.
type TradeQuote struct {
	Expected        *uint256.Int
	Actual          *uint256.Int
	WithinTolerance bool
}

// Buy pays amountAIn of token A and receives token B. It returns the B
// amount paid out.
func (e *Engine) Buy(ctx context.Context, caller common.Address, poolID uint64, amountAIn *uint256.Int) (*uint256.Int, error) {
	return e.trade(ctx, "buy", acl.Buyer, caller, poolID, amountAIn, pricing.AToB)
}

// Sell pays amountBIn of token B and receives token A. It returns the A
// amount paid out.
func (e *Engine) Sell(ctx context.Context, caller common.Address, poolID uint64, amountBIn *uint256.Int) (*uint256.Int, error) {
	return e.trade(ctx, "sell", acl.Seller, caller, poolID, amountBIn, pricing.BToA)
}

// Quote prices a trade without executing it.
func (e *Engine) Quote(poolID uint64, amountIn *uint256.Int, dir pricing.Direction) (TradeQuote, error) {
	ent, err := e.lockOpen(poolID)
	if err != nil {
		return TradeQuote{}, poolErr("quote", poolID, err)
	}
	defer ent.mu.Unlock()

	q, err := e.quote(&ent.pool, orZero(amountIn), dir)
	if err != nil {
		return TradeQuote{}, poolErr("quote", poolID, err)
	}
	return q, nil
}

func (e *Engine) quote(p *Pool, amountIn *uint256.Int, dir pricing.Direction) (TradeQuote, error) {
	expected, err := pricing.Expected(p.ExchangeRatePPM, amountIn, dir)
	if err != nil {
		return TradeQuote{}, err
	}
	actual, err := e.curve.Quote(p.ReserveA, p.ReserveB, p.ExchangeRatePPM, amountIn, dir)
	if errors.Is(err, pricing.ErrExceedsReserve) {
		return TradeQuote{}, fmt.Errorf("%w: %v", ErrInsufficientPoolBalance, err)
	}
	if err != nil {
		return TradeQuote{}, err
	}
	return TradeQuote{
		Expected:        expected,
		Actual:          actual,
		WithinTolerance: pricing.WithinTolerance(expected, actual, p.SlippageTolerancePPM),
	}, nil
}

func (e *Engine) trade(ctx context.Context, op string, role acl.Role, caller common.Address, poolID uint64, amountIn *uint256.Int, dir pricing.Direction) (*uint256.Int, error) {
	fail := func(err error) (*uint256.Int, error) {
		e.reject(op, poolID, caller, err)
		return nil, poolErr(op, poolID, err)
	}

	if err := e.authorize(caller, role); err != nil {
		return fail(err)
	}
	ent, err := e.lockOpen(poolID)
	if err != nil {
		return fail(err)
	}
	defer ent.mu.Unlock()

	amountIn = orZero(amountIn)
	if amountIn.IsZero() {
		return fail(fmt.Errorf("%w: zero input", ErrInvalidAmount))
	}

	p := &ent.pool
	q, err := e.quote(p, amountIn, dir)
	if err != nil {
		return fail(err)
	}
	if !q.WithinTolerance {
		return fail(fmt.Errorf("%w: expected %s, quoted %s, tolerance %d ppm", ErrSlippageExceeded,
			q.Expected.Dec(), q.Actual.Dec(), p.SlippageTolerancePPM))
	}
	if q.Actual.IsZero() {
		return fail(fmt.Errorf("%w: trade too small to pay out", ErrInvalidAmount))
	}

	tokenIn, tokenOut := p.TokenA, p.TokenB
	reserveIn, reserveOut := p.ReserveA, p.ReserveB
	if dir == pricing.BToA {
		tokenIn, tokenOut = p.TokenB, p.TokenA
		reserveIn, reserveOut = p.ReserveB, p.ReserveA
	}
	if q.Actual.Gt(reserveOut) {
		return fail(fmt.Errorf("%w: output %s exceeds reserve %s", ErrInsufficientPoolBalance, q.Actual.Dec(), reserveOut.Dec()))
	}
	nextIn, overflow := new(uint256.Int).AddOverflow(reserveIn, amountIn)
	if overflow {
		return fail(pricing.ErrOverflow)
	}

	if err := e.settle(ctx,
		pull(tokenIn, caller, amountIn),
		push(tokenOut, caller, q.Actual),
	); err != nil {
		return fail(err)
	}

	reserveIn.Set(nextIn)
	reserveOut.Sub(reserveOut, q.Actual)

	name := model.EventBought
	if dir == pricing.BToA {
		name = model.EventSold
	}
	e.journal.append(name, poolID, model.TradeData{
		Trader:    caller.Hex(),
		AmountIn:  amountIn.Dec(),
		AmountOut: q.Actual.Dec(),
	})
	e.logger.Debug("trade settled",
		zap.String("op", op),
		zap.Uint64("pool_id", poolID),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("amount_out", q.Actual.Dec()),
	)
	return q.Actual.Clone(), nil
}
