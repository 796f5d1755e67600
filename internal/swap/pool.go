package swap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"tokenSwap/internal/model"
)

// Pool is a snapshot of one pool record.
type Pool struct {
	ID                   uint64
	TokenA               common.Address
	TokenB               common.Address
	ReserveA             *uint256.Int
	ReserveB             *uint256.Int
	ExchangeRatePPM      uint64
	SlippageTolerancePPM uint64
	Status               model.PoolStatus
	Provider             common.Address
}

func (p *Pool) clone() Pool {
	c := *p
	c.ReserveA = p.ReserveA.Clone()
	c.ReserveB = p.ReserveB.Clone()
	return c
}

// View converts the pool to its storage representation.
func (p Pool) View() model.PoolView {
	return model.PoolView{
		ID:                   p.ID,
		TokenA:               p.TokenA.Hex(),
		TokenB:               p.TokenB.Hex(),
		ReserveA:             p.ReserveA.Dec(),
		ReserveB:             p.ReserveB.Dec(),
		ExchangeRatePPM:      p.ExchangeRatePPM,
		SlippageTolerancePPM: p.SlippageTolerancePPM,
		Status:               p.Status,
		Provider:             p.Provider.Hex(),
	}
}

// PoolFromView parses a storage representation back into a Pool.
func PoolFromView(v model.PoolView) (Pool, error) {
	for _, addr := range []string{v.TokenA, v.TokenB, v.Provider} {
		if !common.IsHexAddress(addr) {
			return Pool{}, fmt.Errorf("pool %d: invalid address %q", v.ID, addr)
		}
	}
	reserveA, err := uint256.FromDecimal(v.ReserveA)
	if err != nil {
		return Pool{}, fmt.Errorf("pool %d reserve a: %w", v.ID, err)
	}
	reserveB, err := uint256.FromDecimal(v.ReserveB)
	if err != nil {
		return Pool{}, fmt.Errorf("pool %d reserve b: %w", v.ID, err)
	}
	switch v.Status {
	case model.PoolOpen, model.PoolClosed:
	default:
		return Pool{}, fmt.Errorf("pool %d: unknown status %q", v.ID, v.Status)
	}
	return Pool{
		ID:                   v.ID,
		TokenA:               common.HexToAddress(v.TokenA),
		TokenB:               common.HexToAddress(v.TokenB),
		ReserveA:             reserveA,
		ReserveB:             reserveB,
		ExchangeRatePPM:      v.ExchangeRatePPM,
		SlippageTolerancePPM: v.SlippageTolerancePPM,
		Status:               v.Status,
		Provider:             common.HexToAddress(v.Provider),
	}, nil
}

// pairKey identifies an open pool for duplicate detection. Provider is zero
// when pairs are unique globally.
type pairKey struct {
	tokenA, tokenB common.Address
	provider       common.Address
}
