package ledger

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	custody = common.HexToAddress("0xc000000000000000000000000000000000000000")
	alice   = common.HexToAddress("0xa000000000000000000000000000000000000001")
	tokenA  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func TestMemoryTransferIn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(custody)
	require.NoError(t, m.Mint(tokenA, alice, uint256.NewInt(100)))

	err := m.TransferIn(ctx, tokenA, alice, uint256.NewInt(10))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	m.Approve(tokenA, alice, custody, uint256.NewInt(500))
	err = m.TransferIn(ctx, tokenA, alice, uint256.NewInt(101))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, m.TransferIn(ctx, tokenA, alice, uint256.NewInt(60)))

	bal, err := m.BalanceOf(ctx, tokenA, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bal.Uint64())

	held, err := m.BalanceOf(ctx, tokenA, custody)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), held.Uint64())
	assert.Equal(t, uint64(440), m.Allowance(tokenA, alice, custody).Uint64())
}

func TestMemoryTransferOut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(custody)
	require.NoError(t, m.Mint(tokenA, custody, uint256.NewInt(5)))

	require.ErrorIs(t, m.TransferOut(ctx, tokenA, alice, uint256.NewInt(6)), ErrInsufficientBalance)
	require.NoError(t, m.TransferOut(ctx, tokenA, alice, uint256.NewInt(5)))

	bal, err := m.BalanceOf(ctx, tokenA, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), bal.Uint64())
}

func TestMemorySnapshotRestore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(custody)
	require.NoError(t, m.Mint(tokenA, alice, uint256.NewInt(1_000)))
	m.Approve(tokenA, alice, custody, uint256.NewInt(300))
	require.NoError(t, m.TransferIn(ctx, tokenA, alice, uint256.NewInt(200)))

	restored, err := RestoreMemory(m.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, custody, restored.Custody())

	bal, err := restored.BalanceOf(ctx, tokenA, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(800), bal.Uint64())

	held, err := restored.BalanceOf(ctx, tokenA, custody)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), held.Uint64())
	assert.Equal(t, uint64(100), restored.Allowance(tokenA, alice, custody).Uint64())
}

func TestMemoryTransferBatchAllOrNothing(t *testing.T) {
	ctx := context.Background()
	tokenB := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	m := NewMemory(custody)
	require.NoError(t, m.Mint(tokenA, alice, uint256.NewInt(100)))
	require.NoError(t, m.Mint(tokenB, alice, uint256.NewInt(5)))
	m.Approve(tokenA, alice, custody, uint256.NewInt(100))
	m.Approve(tokenB, alice, custody, uint256.NewInt(100))

	err := m.TransferBatch(ctx, []Transfer{
		{Token: tokenA, Account: alice, Amount: uint256.NewInt(50)},
		{Token: tokenB, Account: alice, Amount: uint256.NewInt(10)},
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	balA, _ := m.BalanceOf(ctx, tokenA, alice)
	heldA, _ := m.BalanceOf(ctx, tokenA, custody)
	assert.Equal(t, uint64(100), balA.Uint64(), "first leg must be reverted")
	assert.True(t, heldA.IsZero())
	assert.Equal(t, uint64(100), m.Allowance(tokenA, alice, custody).Uint64(), "allowance must be restored")

	require.NoError(t, m.TransferBatch(ctx, []Transfer{
		{Token: tokenA, Account: alice, Amount: uint256.NewInt(50)},
		{Token: tokenB, Account: alice, Amount: uint256.NewInt(5)},
		{Token: tokenA, Account: alice, Amount: uint256.NewInt(20), Out: true},
	}))
	balA, _ = m.BalanceOf(ctx, tokenA, alice)
	heldA, _ = m.BalanceOf(ctx, tokenA, custody)
	assert.Equal(t, uint64(70), balA.Uint64())
	assert.Equal(t, uint64(30), heldA.Uint64())
}

func TestMemoryTransferCreditOverflow(t *testing.T) {
	ctx := context.Background()
	bob := common.HexToAddress("0xb000000000000000000000000000000000000002")
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	unlimited := new(uint256.Int).SetAllOne()

	m := NewMemory(custody)
	for _, holder := range []common.Address{alice, bob} {
		require.NoError(t, m.Mint(tokenA, holder, half))
		m.Approve(tokenA, holder, custody, unlimited)
	}

	require.NoError(t, m.TransferIn(ctx, tokenA, alice, half))
	err := m.TransferIn(ctx, tokenA, bob, half)
	require.ErrorIs(t, err, ErrBalanceOverflow)

	held, _ := m.BalanceOf(ctx, tokenA, custody)
	assert.Equal(t, half, held, "custody must not wrap")
	bal, _ := m.BalanceOf(ctx, tokenA, bob)
	assert.Equal(t, half, bal, "failed transfer must not debit the holder")
	assert.Equal(t, unlimited, m.Allowance(tokenA, bob, custody))

	// Crediting a holder already at the top of the range fails the same way.
	require.NoError(t, m.Mint(tokenA, bob, new(uint256.Int).Sub(half, uint256.NewInt(1))))
	err = m.TransferOut(ctx, tokenA, bob, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrBalanceOverflow)
	held, _ = m.BalanceOf(ctx, tokenA, custody)
	assert.Equal(t, half, held)

	err = m.TransferBatch(ctx, []Transfer{
		{Token: tokenA, Account: alice, Amount: uint256.NewInt(1), Out: true},
		{Token: tokenA, Account: bob, Amount: uint256.NewInt(1), Out: true},
	})
	require.ErrorIs(t, err, ErrBalanceOverflow)
	balAlice, _ := m.BalanceOf(ctx, tokenA, alice)
	assert.True(t, balAlice.IsZero(), "batch must revert the first leg")
}
