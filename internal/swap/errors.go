package swap

import (
	"errors"
	"fmt"

	"tokenSwap/internal/ledger"
	"tokenSwap/internal/pricing"
)

var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrPoolNotOpen             = errors.New("pool not open")
	ErrDuplicatePool           = errors.New("duplicate pool")
	ErrImbalancedSeed          = errors.New("imbalanced seed")
	ErrInsufficientPoolBalance = errors.New("insufficient pool balance")
	ErrSlippageExceeded        = errors.New("slippage exceeded")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidPool             = errors.New("invalid pool parameters")

	// ErrPoolNotFound is returned for ids that were never allocated. It
	// matches ErrPoolNotOpen under errors.Is.
	ErrPoolNotFound = fmt.Errorf("%w: no such pool", ErrPoolNotOpen)
)

// OpError wraps a failed engine operation with its name and pool.
type OpError struct {
	Op      string
	PoolID  uint64
	HasPool bool
	Err     error
}

func (e *OpError) Error() string {
	if e.HasPool {
		return fmt.Sprintf("%s pool %d: %v", e.Op, e.PoolID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap allows the error to be inspected with errors.Is and errors.As.
func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	return &OpError{Op: op, Err: err}
}

func poolErr(op string, poolID uint64, err error) error {
	return &OpError{Op: op, PoolID: poolID, HasPool: true, Err: err}
}

// Kind names the taxonomy entry err belongs to, or "internal".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}

var kinds = []struct {
	name string
	err  error
}{
	{"Unauthorized", ErrUnauthorized},
	{"PoolNotOpen", ErrPoolNotOpen},
	{"DuplicatePool", ErrDuplicatePool},
	{"ImbalancedSeed", ErrImbalancedSeed},
	{"InsufficientAllowance", ledger.ErrInsufficientAllowance},
	{"InsufficientBalance", ledger.ErrInsufficientBalance},
	{"InsufficientPoolBalance", ErrInsufficientPoolBalance},
	{"SlippageExceeded", ErrSlippageExceeded},
	{"InvalidAmount", ErrInvalidAmount},
	{"InvalidPool", ErrInvalidPool},
	{"Overflow", pricing.ErrOverflow},
	{"Overflow", ledger.ErrBalanceOverflow},
}
