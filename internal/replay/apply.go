package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/model"
	"tokenSwap/internal/pricing"
	"tokenSwap/internal/swap"
)

// ErrInvalidOperation marks script lines that cannot be applied as written.
var ErrInvalidOperation = errors.New("invalid operation")

// Apply executes one operation against the session.
func (s *Session) Apply(ctx context.Context, op model.Operation) error {
	caller, err := parseAddress("caller", op.Caller)
	if err != nil {
		return err
	}

	switch op.Op {
	case model.OpGrantRole, model.OpRevokeRole:
		account, err := parseAddress("account", op.Account)
		if err != nil {
			return err
		}
		role, err := acl.ParseRole(op.Role)
		if err != nil {
			return err
		}
		if op.Op == model.OpGrantRole {
			return s.Roles.Grant(caller, account, role)
		}
		return s.Roles.Revoke(caller, account, role)

	case model.OpMint:
		if !s.Roles.Authorize(caller, acl.Admin) {
			return fmt.Errorf("mint: %w", acl.ErrNotAdmin)
		}
		token, account, amount, err := parseTokenTransfer(op)
		if err != nil {
			return err
		}
		return s.Ledger.Mint(token, account, amount)

	case model.OpApprove:
		token, err := parseAddress("token", op.Token)
		if err != nil {
			return err
		}
		spender := s.Ledger.Custody()
		if op.Account != "" {
			if spender, err = parseAddress("account", op.Account); err != nil {
				return err
			}
		}
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		s.Ledger.Approve(token, caller, spender, amount)
		return nil

	case model.OpCreatePool:
		tokenA, err := parseAddress("token_a", op.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := parseAddress("token_b", op.TokenB)
		if err != nil {
			return err
		}
		amountA, amountB, err := parsePair(op)
		if err != nil {
			return err
		}
		_, err = s.Engine.CreatePool(ctx, caller, swap.CreatePoolParams{
			TokenA:               tokenA,
			TokenB:               tokenB,
			AmountA:              amountA,
			AmountB:              amountB,
			SlippageTolerancePPM: op.SlippageTolerancePPM,
			ExchangeRatePPM:      op.ExchangeRatePPM,
		})
		return err

	case model.OpClosePool:
		return s.Engine.ClosePool(ctx, caller, op.PoolID)

	case model.OpAddLiquidity, model.OpRemoveLiquidity:
		amountA, amountB, err := parsePair(op)
		if err != nil {
			return err
		}
		if op.Op == model.OpAddLiquidity {
			return s.Engine.AddLiquidity(ctx, caller, op.PoolID, amountA, amountB)
		}
		return s.Engine.RemoveLiquidity(ctx, caller, op.PoolID, amountA, amountB)

	case model.OpBuy, model.OpSell:
		amount, err := parseAmount("amount", op.Amount)
		if err != nil {
			return err
		}
		if op.Op == model.OpBuy {
			_, err = s.Engine.Buy(ctx, caller, op.PoolID, amount)
		} else {
			_, err = s.Engine.Sell(ctx, caller, op.PoolID, amount)
		}
		return err

	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidOperation, op.Op)
	}
}

// Kind classifies an Apply error for operation error records.
func Kind(err error) string {
	switch {
	case errors.Is(err, acl.ErrNotAdmin):
		return "Unauthorized"
	case errors.Is(err, acl.ErrUnknownRole):
		return "UnknownRole"
	case errors.Is(err, ErrInvalidOperation):
		return "InvalidOperation"
	}
	return swap.Kind(err)
}

func parseAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: %s %q is not an address", ErrInvalidOperation, field, value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(field, value string) (*uint256.Int, error) {
	amount, err := pricing.ParseAmount(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidOperation, field, value, err)
	}
	return amount, nil
}

func parsePair(op model.Operation) (*uint256.Int, *uint256.Int, error) {
	amountA, err := parseAmount("amount_a", op.AmountA)
	if err != nil {
		return nil, nil, err
	}
	amountB, err := parseAmount("amount_b", op.AmountB)
	if err != nil {
		return nil, nil, err
	}
	return amountA, amountB, nil
}

func parseTokenTransfer(op model.Operation) (common.Address, common.Address, *uint256.Int, error) {
	token, err := parseAddress("token", op.Token)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}
	account, err := parseAddress("account", op.Account)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}
	amount, err := parseAmount("amount", op.Amount)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}
	return token, account, amount, nil
}
