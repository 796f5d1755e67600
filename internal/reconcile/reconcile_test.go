package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/ledger"
	"tokenSwap/internal/model"
	"tokenSwap/internal/swap"
)

var (
	custody  = common.HexToAddress("0xc0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0")
	provider = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenA   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

func seededEngine(t *testing.T) (*swap.Engine, *ledger.Memory) {
	t.Helper()
	l := ledger.NewMemory(custody)
	unlimited := new(uint256.Int).SetAllOne()
	for _, token := range []common.Address{tokenA, tokenB} {
		if err := l.Mint(token, provider, ether(1_000)); err != nil {
			t.Fatalf("mint: %v", err)
		}
		l.Approve(token, provider, custody, unlimited)
	}
	roles := acl.NewRoleTable()
	roles.Load(map[acl.Role][]common.Address{acl.Provider: {provider}})

	e, err := swap.New(swap.Options{Ledger: l, Authorizer: roles})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = e.CreatePool(context.Background(), provider, swap.CreatePoolParams{
		TokenA: tokenA, TokenB: tokenB,
		AmountA: ether(30), AmountB: ether(15),
		ExchangeRatePPM: 2_000_000, SlippageTolerancePPM: 10_000,
	})
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return e, l
}

func TestCheckBalanced(t *testing.T) {
	e, l := seededEngine(t)
	r, err := New(l, custody, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	report, err := r.Check(context.Background(), e.Pools())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.Tokens != 2 || !report.Balanced() {
		t.Fatalf("unexpected report %+v", report)
	}
}

type staticMeta map[common.Address]model.TokenMeta

func (m staticMeta) TokenMeta(_ context.Context, token common.Address, _ *zap.Logger) (model.TokenMeta, error) {
	meta, ok := m[token]
	if !ok {
		return model.TokenMeta{}, errors.New("unknown token")
	}
	return meta, nil
}

func TestCheckReportsMismatch(t *testing.T) {
	e, l := seededEngine(t)
	if err := l.Mint(tokenB, custody, uint256.NewInt(5e17)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	meta := staticMeta{tokenB: {Address: tokenB.Hex(), Decimals: 18, Symbol: "BBB"}}
	r, err := New(l, custody, Options{Meta: meta})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	report, err := r.Check(context.Background(), e.Pools())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %+v", report.Mismatches)
	}
	got := report.Mismatches[0]
	if got.Token != tokenB.Hex() || got.Symbol != "BBB" {
		t.Fatalf("unexpected mismatch %+v", got)
	}
	if got.Reserves != ether(15).Dec() || got.Custody != "15500000000000000000" {
		t.Fatalf("unexpected amounts %+v", got)
	}
	want := "reserves 15.000000000000000000, custody 15.500000000000000000"
	if got.Formatted != want {
		t.Fatalf("expected %q, got %q", want, got.Formatted)
	}
}

func TestSumReservesSkipsClosed(t *testing.T) {
	pools := []swap.Pool{
		{TokenA: tokenA, TokenB: tokenB, ReserveA: ether(1), ReserveB: ether(2), Status: model.PoolOpen},
		{TokenA: tokenA, TokenB: tokenB, ReserveA: ether(7), ReserveB: ether(7), Status: model.PoolClosed},
		{TokenA: tokenB, TokenB: tokenA, ReserveA: ether(3), ReserveB: ether(4), Status: model.PoolOpen},
	}
	totals := SumReserves(pools)
	if !totals[tokenA].Eq(ether(5)) || !totals[tokenB].Eq(ether(5)) {
		t.Fatalf("unexpected totals A=%s B=%s", totals[tokenA].Dec(), totals[tokenB].Dec())
	}
}

type flakySource struct {
	failures int
	calls    int
	inner    ledger.BalanceReader
}

func (f *flakySource) BalanceOf(ctx context.Context, token, account common.Address) (*uint256.Int, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("rpc unavailable")
	}
	return f.inner.BalanceOf(ctx, token, account)
}

func TestCheckRetries(t *testing.T) {
	e, l := seededEngine(t)
	source := &flakySource{failures: 2, inner: l}
	r, err := New(source, custody, Options{MaxRetries: 2, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	report, err := r.Check(context.Background(), e.Pools())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !report.Balanced() {
		t.Fatalf("expected balanced report")
	}

	source = &flakySource{failures: 10, inner: l}
	r, _ = New(source, custody, Options{MaxRetries: 1, RetryDelay: time.Millisecond})
	if _, err := r.Check(context.Background(), e.Pools()); err == nil {
		t.Fatalf("expected error once retries are exhausted")
	}
	if source.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", source.calls)
	}
}

func TestFormatTokenAmount(t *testing.T) {
	cases := []struct {
		value    *uint256.Int
		decimals uint8
		want     string
	}{
		{nil, 18, "0"},
		{uint256.NewInt(1234), 0, "1234"},
		{uint256.NewInt(1500000), 6, "1.500000"},
		{ether(3), 18, "3.000000000000000000"},
	}
	for _, tc := range cases {
		if got := formatTokenAmount(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("format(%v, %d): expected %s, got %s", tc.value, tc.decimals, tc.want, got)
		}
	}
}
