package swap

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/model"
	"tokenSwap/internal/pricing"
)

// CreatePoolParams describes a new pool and its seed liquidity.
type CreatePoolParams struct {
	TokenA               common.Address
	TokenB               common.Address
	AmountA              *uint256.Int
	AmountB              *uint256.Int
	SlippageTolerancePPM uint64
	ExchangeRatePPM      uint64
}

func (p CreatePoolParams) validate() error {
	if p.TokenA == p.TokenB {
		return fmt.Errorf("%w: token a and b must differ", ErrInvalidPool)
	}
	if p.ExchangeRatePPM == 0 {
		return fmt.Errorf("%w: exchange rate must be positive", ErrInvalidPool)
	}
	if p.SlippageTolerancePPM > pricing.PPM {
		return fmt.Errorf("%w: slippage tolerance %d exceeds %d", ErrInvalidPool, p.SlippageTolerancePPM, pricing.PPM)
	}
	if p.AmountA == nil || p.AmountA.IsZero() || p.AmountB == nil || p.AmountB.IsZero() {
		return fmt.Errorf("%w: seed amounts must be positive", ErrInvalidAmount)
	}
	return nil
}

// CreatePool pulls the seed amounts from caller into custody and opens a
// new pool with caller as provider. Parameter and seed-balance checks run
// before the duplicate check, and all of them before any funds move.
func (e *Engine) CreatePool(ctx context.Context, caller common.Address, params CreatePoolParams) (uint64, error) {
	const op = "createPool"
	fail := func(err error) (uint64, error) {
		e.reject(op, 0, caller, err)
		return 0, opErr(op, err)
	}

	if err := e.authorize(caller, acl.Provider); err != nil {
		return fail(err)
	}
	if err := params.validate(); err != nil {
		return fail(err)
	}
	balanced, err := pricing.SeedBalanced(params.AmountA, params.AmountB, params.ExchangeRatePPM, params.SlippageTolerancePPM)
	if err != nil {
		return fail(err)
	}
	if !balanced {
		return fail(fmt.Errorf("%w: %s A against %s B at rate %d ppm", ErrImbalancedSeed,
			params.AmountA.Dec(), params.AmountB.Dec(), params.ExchangeRatePPM))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := e.keyFor(params.TokenA, params.TokenB, caller)
	if existing, ok := e.open[key]; ok {
		return fail(fmt.Errorf("%w: pool %d is open for this pair", ErrDuplicatePool, existing))
	}

	amountA, amountB := params.AmountA.Clone(), params.AmountB.Clone()
	if err := e.settle(ctx,
		pull(params.TokenA, caller, amountA),
		pull(params.TokenB, caller, amountB),
	); err != nil {
		return fail(err)
	}

	id := uint64(len(e.pools))
	e.pools = append(e.pools, &entry{pool: Pool{
		ID:                   id,
		TokenA:               params.TokenA,
		TokenB:               params.TokenB,
		ReserveA:             amountA,
		ReserveB:             amountB,
		ExchangeRatePPM:      params.ExchangeRatePPM,
		SlippageTolerancePPM: params.SlippageTolerancePPM,
		Status:               model.PoolOpen,
		Provider:             caller,
	}})
	e.open[key] = id

	e.journal.append(model.EventPoolCreated, id, model.PoolCreatedData{
		TokenA:   params.TokenA.Hex(),
		TokenB:   params.TokenB.Hex(),
		AmountA:  amountA.Dec(),
		AmountB:  amountB.Dec(),
		Provider: caller.Hex(),
	})
	e.logger.Debug("pool created",
		zap.Uint64("pool_id", id),
		zap.String("provider", caller.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
	)
	return id, nil
}

// ClosePool returns both reserves to the provider and closes the pool for
// good. A second close fails with ErrPoolNotOpen.
func (e *Engine) ClosePool(ctx context.Context, caller common.Address, poolID uint64) error {
	const op = "closePool"
	fail := func(err error) error {
		e.reject(op, poolID, caller, err)
		return poolErr(op, poolID, err)
	}

	if err := e.authorize(caller, acl.Provider); err != nil {
		return fail(err)
	}
	ent, err := e.lockOpen(poolID)
	if err != nil {
		return fail(err)
	}
	defer ent.mu.Unlock()

	p := &ent.pool
	if p.Provider != caller {
		return fail(fmt.Errorf("%w: %s is not the pool provider", ErrUnauthorized, caller.Hex()))
	}

	returnedA, returnedB := p.ReserveA.Clone(), p.ReserveB.Clone()
	if err := e.settle(ctx,
		push(p.TokenA, p.Provider, returnedA),
		push(p.TokenB, p.Provider, returnedB),
	); err != nil {
		return fail(err)
	}

	p.ReserveA.Clear()
	p.ReserveB.Clear()
	p.Status = model.PoolClosed

	e.mu.Lock()
	delete(e.open, e.keyFor(p.TokenA, p.TokenB, p.Provider))
	e.mu.Unlock()

	e.journal.append(model.EventPoolClosed, poolID, model.PoolClosedData{
		Provider:  p.Provider.Hex(),
		ReturnedA: returnedA.Dec(),
		ReturnedB: returnedB.Dec(),
	})
	e.logger.Debug("pool closed", zap.Uint64("pool_id", poolID))
	return nil
}
