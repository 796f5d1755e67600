package pricing

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// PPM is the parts-per-million scale used for rates and tolerances.
const PPM = 1_000_000

var (
	ErrOverflow       = errors.New("fixed-point overflow")
	ErrZeroRate       = errors.New("exchange rate must be positive")
	ErrExceedsReserve = errors.New("output exceeds reserve")
)

var ppm = uint256.NewInt(PPM)

// mulDiv returns floor(x*y/d) using a 512-bit intermediate product.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("mul div: %w", ErrZeroRate)
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// mulDivUp returns ceil(x*y/d).
func mulDivUp(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := mulDiv(x, y, d)
	if err != nil {
		return nil, err
	}
	if !new(uint256.Int).MulMod(x, y, d).IsZero() {
		if _, overflow := z.AddOverflow(z, uint256.NewInt(1)); overflow {
			return nil, ErrOverflow
		}
	}
	return z, nil
}

// ParseAmount parses a base-10 amount. Empty input is zero.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
