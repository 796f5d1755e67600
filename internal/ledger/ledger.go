package ledger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrBalanceOverflow       = errors.New("balance overflow")
)

// Ledger moves funds between holder accounts and the exchange custody
// account. Each call either moves the full amount or nothing.
type Ledger interface {
	TransferIn(ctx context.Context, token, from common.Address, amount *uint256.Int) error
	TransferOut(ctx context.Context, token, to common.Address, amount *uint256.Int) error
}

// BalanceReader reports token balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, token, account common.Address) (*uint256.Int, error)
}

// Transfer is one leg of a settlement. Out moves funds from custody to
// Account; otherwise funds move from Account into custody.
type Transfer struct {
	Token   common.Address
	Account common.Address
	Amount  *uint256.Int
	Out     bool
}

// Batcher is implemented by ledgers that can apply several transfers as one
// all-or-nothing unit.
type Batcher interface {
	TransferBatch(ctx context.Context, transfers []Transfer) error
}
