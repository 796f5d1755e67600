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

// AddLiquidity pulls deltaA and deltaB from caller into the pool. Either
// delta may be zero, not both.
func (e *Engine) AddLiquidity(ctx context.Context, caller common.Address, poolID uint64, deltaA, deltaB *uint256.Int) error {
	const op = "addLiquidity"
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

	deltaA, deltaB = orZero(deltaA), orZero(deltaB)
	if deltaA.IsZero() && deltaB.IsZero() {
		return fail(fmt.Errorf("%w: both deltas are zero", ErrInvalidAmount))
	}

	p := &ent.pool
	nextA, overflowA := new(uint256.Int).AddOverflow(p.ReserveA, deltaA)
	nextB, overflowB := new(uint256.Int).AddOverflow(p.ReserveB, deltaB)
	if overflowA || overflowB {
		return fail(pricing.ErrOverflow)
	}

	if err := e.settle(ctx,
		pull(p.TokenA, caller, deltaA),
		pull(p.TokenB, caller, deltaB),
	); err != nil {
		return fail(err)
	}

	p.ReserveA.Set(nextA)
	p.ReserveB.Set(nextB)
	e.emitReserves(p)
	return nil
}

// RemoveLiquidity pays deltaA and deltaB out of the pool to its provider.
// The check is against this pool's reserves only.
func (e *Engine) RemoveLiquidity(ctx context.Context, caller common.Address, poolID uint64, deltaA, deltaB *uint256.Int) error {
	const op = "removeLiquidity"
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
	deltaA, deltaB = orZero(deltaA), orZero(deltaB)
	if deltaA.IsZero() && deltaB.IsZero() {
		return fail(fmt.Errorf("%w: both deltas are zero", ErrInvalidAmount))
	}
	if deltaA.Gt(p.ReserveA) || deltaB.Gt(p.ReserveB) {
		return fail(fmt.Errorf("%w: requested %s A / %s B, pool holds %s A / %s B", ErrInsufficientPoolBalance,
			deltaA.Dec(), deltaB.Dec(), p.ReserveA.Dec(), p.ReserveB.Dec()))
	}

	if err := e.settle(ctx,
		push(p.TokenA, caller, deltaA),
		push(p.TokenB, caller, deltaB),
	); err != nil {
		return fail(err)
	}

	p.ReserveA.Sub(p.ReserveA, deltaA)
	p.ReserveB.Sub(p.ReserveB, deltaB)
	e.emitReserves(p)
	return nil
}

func (e *Engine) emitReserves(p *Pool) {
	e.journal.append(model.EventPoolDataUpdated, p.ID, model.PoolDataUpdatedData{
		ReserveA: p.ReserveA.Dec(),
		ReserveB: p.ReserveB.Dec(),
	})
	e.logger.Debug("pool reserves updated",
		zap.Uint64("pool_id", p.ID),
		zap.String("reserve_a", p.ReserveA.Dec()),
		zap.String("reserve_b", p.ReserveB.Dec()),
	)
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
