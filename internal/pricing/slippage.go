package pricing

import "github.com/holiman/uint256"

// WithinTolerance reports whether actual is worse than expected by at most
// tolerancePPM/1e6 of expected:
//
//	expected - actual <= tolerancePPM * expected / 1e6
//
// An actual output at or above expected always passes. The bound is exact:
// diff*1e6 <= tol*expected holds iff diff <= floor(tol*expected/1e6).
func WithinTolerance(expected, actual *uint256.Int, tolerancePPM uint64) bool {
	if !actual.Lt(expected) {
		return true
	}
	diff := new(uint256.Int).Sub(expected, actual)
	return diff.Cmp(allowance(expected, tolerancePPM)) <= 0
}

// WithinBand is the two-sided form of WithinTolerance.
func WithinBand(expected, actual *uint256.Int, tolerancePPM uint64) bool {
	var diff uint256.Int
	if actual.Lt(expected) {
		diff.Sub(expected, actual)
	} else {
		diff.Sub(actual, expected)
	}
	return diff.Cmp(allowance(expected, tolerancePPM)) <= 0
}

// SeedBalanced reports whether amountB is within tolerance of the amount of
// B that the exchange rate implies for amountA. The curve is not consulted:
// a seed deposit is not a trade against existing reserves, and the curve
// quotes against reserves that do not exist yet.
func SeedBalanced(amountA, amountB *uint256.Int, ratePPM, tolerancePPM uint64) (bool, error) {
	expected, err := Expected(ratePPM, amountA, AToB)
	if err != nil {
		return false, err
	}
	if expected.IsZero() {
		return false, nil
	}
	return WithinBand(expected, amountB, tolerancePPM), nil
}

func allowance(expected *uint256.Int, tolerancePPM uint64) *uint256.Int {
	if tolerancePPM >= PPM {
		return new(uint256.Int).Set(expected)
	}
	// tol < 1e6 so the quotient never exceeds expected.
	z, _ := new(uint256.Int).MulDivOverflow(expected, uint256.NewInt(tolerancePPM), ppm)
	return z
}
