package pricing

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Direction selects which asset is paid into the pool.
type Direction uint8

const (
	// AToB pays token A and receives token B (a buy).
	AToB Direction = iota
	// BToA pays token B and receives token A (a sell).
	BToA
)

func (d Direction) String() string {
	switch d {
	case AToB:
		return "a_to_b"
	case BToA:
		return "b_to_a"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "buy"/"a_to_b" and "sell"/"b_to_a".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "buy", "a_to_b", "AToB":
		return AToB, nil
	case "sell", "b_to_a", "BToA":
		return BToA, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Curve maps reserves, the PPM exchange rate (units of A per unit of B) and
// an input amount to an output amount. Implementations are pure, monotonic
// in amountIn and never return more than the output-side reserve.
type Curve interface {
	Name() string
	Quote(reserveA, reserveB *uint256.Int, ratePPM uint64, amountIn *uint256.Int, dir Direction) (*uint256.Int, error)
}

// Expected returns the no-slippage output at the exchange rate, rounded down.
func Expected(ratePPM uint64, amountIn *uint256.Int, dir Direction) (*uint256.Int, error) {
	if ratePPM == 0 {
		return nil, ErrZeroRate
	}
	rate := uint256.NewInt(ratePPM)
	if dir == AToB {
		return mulDiv(amountIn, ppm, rate)
	}
	return mulDiv(amountIn, rate, ppm)
}

// AnchoredProduct is a constant-product curve whose input-side reserve is
// virtual: it is derived from the output reserve so that the marginal price
// at zero size equals the exchange rate. For an output reserve R, virtual
// input reserve V and input x:
//
//	out = floor(R*x / (V+x))
//
// V is rounded up, so rounding always favors the pool and out < R whenever
// R > 0.
type AnchoredProduct struct{}

func (AnchoredProduct) Name() string { return "anchored_product" }

func (AnchoredProduct) Quote(reserveA, reserveB *uint256.Int, ratePPM uint64, amountIn *uint256.Int, dir Direction) (*uint256.Int, error) {
	if ratePPM == 0 {
		return nil, ErrZeroRate
	}
	rate := uint256.NewInt(ratePPM)

	var reserveOut, virtualIn *uint256.Int
	var err error
	switch dir {
	case AToB:
		reserveOut = reserveB
		virtualIn, err = mulDivUp(reserveB, rate, ppm)
	case BToA:
		reserveOut = reserveA
		virtualIn, err = mulDivUp(reserveA, ppm, rate)
	default:
		return nil, fmt.Errorf("quote: unknown %s", dir)
	}
	if err != nil {
		return nil, err
	}
	if reserveOut.IsZero() || amountIn.IsZero() {
		return new(uint256.Int), nil
	}

	denom, overflow := new(uint256.Int).AddOverflow(virtualIn, amountIn)
	if overflow {
		return nil, ErrOverflow
	}
	return mulDiv(reserveOut, amountIn, denom)
}

// FixedRate trades exactly at the exchange rate until the output reserve is
// exhausted.
type FixedRate struct{}

func (FixedRate) Name() string { return "fixed_rate" }

func (FixedRate) Quote(reserveA, reserveB *uint256.Int, ratePPM uint64, amountIn *uint256.Int, dir Direction) (*uint256.Int, error) {
	out, err := Expected(ratePPM, amountIn, dir)
	if err != nil {
		return nil, err
	}
	reserveOut := reserveB
	if dir == BToA {
		reserveOut = reserveA
	}
	if out.Gt(reserveOut) {
		return nil, ErrExceedsReserve
	}
	return out, nil
}

// CurveByName resolves a configured curve name. An empty name selects
// AnchoredProduct.
func CurveByName(name string) (Curve, error) {
	switch name {
	case "", AnchoredProduct{}.Name():
		return AnchoredProduct{}, nil
	case FixedRate{}.Name():
		return FixedRate{}, nil
	default:
		return nil, fmt.Errorf("unknown curve %q", name)
	}
}
