package pricing

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

func TestExpected(t *testing.T) {
	cases := []struct {
		name   string
		rate   uint64
		in     *uint256.Int
		dir    Direction
		expect *uint256.Int
	}{
		{"buy at 2", 2 * PPM, ether(30), AToB, ether(15)},
		{"buy at 4", 4 * PPM, ether(2), AToB, uint256.NewInt(5e17)},
		{"sell at 4", 4 * PPM, ether(1), BToA, ether(4)},
		{"buy rounds down", 3 * PPM, uint256.NewInt(10), AToB, uint256.NewInt(3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Expected(tc.rate, tc.in, tc.dir)
			require.NoError(t, err)
			require.Equal(t, tc.expect.Dec(), got.Dec())
		})
	}

	_, err := Expected(0, ether(1), AToB)
	require.ErrorIs(t, err, ErrZeroRate)
}

func TestAnchoredProductQuote(t *testing.T) {
	curve := AnchoredProduct{}

	out, err := curve.Quote(ether(400), ether(100), 4*PPM, ether(2), AToB)
	require.NoError(t, err)
	require.Equal(t, "497512437810945273", out.Dec())

	expected, err := Expected(4*PPM, ether(2), AToB)
	require.NoError(t, err)
	require.True(t, WithinTolerance(expected, out, 5_000))
	require.False(t, WithinTolerance(expected, out, 100))

	out, err = curve.Quote(ether(400), ether(100), 4*PPM, ether(1), BToA)
	require.NoError(t, err)
	require.True(t, out.Lt(ether(4)))
	require.True(t, out.Gt(ether(3)))
}

func TestAnchoredProductEdges(t *testing.T) {
	curve := AnchoredProduct{}

	out, err := curve.Quote(ether(1), new(uint256.Int), 2*PPM, ether(1), AToB)
	require.NoError(t, err)
	require.True(t, out.IsZero(), "empty reserve yields nothing")

	out, err = curve.Quote(ether(1), ether(1), 2*PPM, new(uint256.Int), AToB)
	require.NoError(t, err)
	require.True(t, out.IsZero())

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	out, err = curve.Quote(ether(1), uint256.NewInt(1), 1, huge, AToB)
	require.NoError(t, err)
	require.True(t, out.IsZero(), "a one-unit reserve can never be paid out")

	_, err = curve.Quote(ether(1), ether(1), 2*PPM, new(uint256.Int).SetAllOne(), AToB)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = curve.Quote(ether(1), ether(1), 0, ether(1), AToB)
	require.ErrorIs(t, err, ErrZeroRate)
}

func TestFixedRateQuote(t *testing.T) {
	curve := FixedRate{}

	out, err := curve.Quote(ether(10), ether(10), 2*PPM, ether(4), AToB)
	require.NoError(t, err)
	require.Equal(t, ether(2).Dec(), out.Dec())

	_, err = curve.Quote(ether(10), ether(1), 2*PPM, ether(4), AToB)
	require.ErrorIs(t, err, ErrExceedsReserve)
}

func TestCurveByName(t *testing.T) {
	c, err := CurveByName("")
	require.NoError(t, err)
	require.Equal(t, "anchored_product", c.Name())

	c, err = CurveByName("fixed_rate")
	require.NoError(t, err)
	require.Equal(t, "fixed_rate", c.Name())

	_, err = CurveByName("bancor")
	require.Error(t, err)
}

func TestAnchoredProductProperties(t *testing.T) {
	curve := AnchoredProduct{}
	rapid.Check(t, func(t *rapid.T) {
		reserveA := uint256.NewInt(rapid.Uint64Range(1, 1<<62).Draw(t, "reserveA"))
		reserveB := uint256.NewInt(rapid.Uint64Range(1, 1<<62).Draw(t, "reserveB"))
		rate := rapid.Uint64Range(1, 1_000*PPM).Draw(t, "rate")
		dir := rapid.SampledFrom([]Direction{AToB, BToA}).Draw(t, "dir")
		small := rapid.Uint64Range(0, 1<<62).Draw(t, "small")
		extra := rapid.Uint64Range(0, 1<<62).Draw(t, "extra")

		x := uint256.NewInt(small)
		y := new(uint256.Int).Add(x, uint256.NewInt(extra))

		outX, err := curve.Quote(reserveA, reserveB, rate, x, dir)
		if err != nil {
			t.Fatalf("quote x: %v", err)
		}
		outY, err := curve.Quote(reserveA, reserveB, rate, y, dir)
		if err != nil {
			t.Fatalf("quote y: %v", err)
		}
		if outY.Lt(outX) {
			t.Fatalf("not monotonic: q(%s)=%s > q(%s)=%s", x.Dec(), outX.Dec(), y.Dec(), outY.Dec())
		}

		reserveOut := reserveB
		if dir == BToA {
			reserveOut = reserveA
		}
		if !outY.Lt(reserveOut) {
			t.Fatalf("output %s reaches reserve %s", outY.Dec(), reserveOut.Dec())
		}

		expected, err := Expected(rate, y, dir)
		if err != nil {
			t.Fatalf("expected: %v", err)
		}
		if outY.Gt(expected) {
			t.Fatalf("output %s beats the rate %s", outY.Dec(), expected.Dec())
		}
	})
}
