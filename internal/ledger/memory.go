package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"tokenSwap/internal/model"
)

var (
	_ Ledger        = (*Memory)(nil)
	_ Batcher       = (*Memory)(nil)
	_ BalanceReader = (*Memory)(nil)
)

// Memory is an in-process ERC20-style ledger with a single custody account.
// TransferIn spends the holder's allowance towards custody.
type Memory struct {
	custody common.Address

	mu         sync.Mutex
	balances   map[common.Address]map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]map[common.Address]*uint256.Int
}

func NewMemory(custody common.Address) *Memory {
	return &Memory{
		custody:    custody,
		balances:   make(map[common.Address]map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]map[common.Address]*uint256.Int),
	}
}

// Custody returns the account holding pool reserves.
func (m *Memory) Custody() common.Address {
	return m.custody
}

// Mint credits amount of token to account.
func (m *Memory) Mint(token, account common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balance(token, account)
	sum, overflow := new(uint256.Int).AddOverflow(bal, amount)
	if overflow {
		return fmt.Errorf("mint %s to %s: %w", token.Hex(), account.Hex(), ErrBalanceOverflow)
	}
	bal.Set(sum)
	return nil
}

// Approve sets owner's allowance for spender to amount.
func (m *Memory) Approve(token, owner, spender common.Address, amount *uint256.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowance(token, owner, spender).Set(amount)
}

// Allowance returns owner's remaining allowance for spender.
func (m *Memory) Allowance(token, owner, spender common.Address) *uint256.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowance(token, owner, spender).Clone()
}

func (m *Memory) BalanceOf(_ context.Context, token, account common.Address) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(token, account).Clone(), nil
}

func (m *Memory) TransferIn(_ context.Context, token, from common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transferIn(token, from, amount, nil)
}

func (m *Memory) TransferOut(_ context.Context, token, to common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transferOut(token, to, amount, nil)
}

// TransferBatch applies transfers in order; if any fails, every balance and
// allowance touched by the batch is restored.
func (m *Memory) TransferBatch(_ context.Context, transfers []Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var undo undoLog
	for _, tr := range transfers {
		var err error
		if tr.Out {
			err = m.transferOut(tr.Token, tr.Account, tr.Amount, &undo)
		} else {
			err = m.transferIn(tr.Token, tr.Account, tr.Amount, &undo)
		}
		if err != nil {
			undo.revert()
			return err
		}
	}
	return nil
}

func (m *Memory) transferIn(token, from common.Address, amount *uint256.Int, undo *undoLog) error {
	allowed := m.allowance(token, from, m.custody)
	if allowed.Lt(amount) {
		return fmt.Errorf("transfer in %s from %s: %w", token.Hex(), from.Hex(), ErrInsufficientAllowance)
	}
	bal := m.balance(token, from)
	if bal.Lt(amount) {
		return fmt.Errorf("transfer in %s from %s: %w", token.Hex(), from.Hex(), ErrInsufficientBalance)
	}
	custody := m.balance(token, m.custody)
	if _, overflow := new(uint256.Int).AddOverflow(custody, amount); overflow {
		return fmt.Errorf("transfer in %s from %s: custody %w", token.Hex(), from.Hex(), ErrBalanceOverflow)
	}

	undo.save(allowed, bal, custody)
	allowed.Sub(allowed, amount)
	bal.Sub(bal, amount)
	custody.Add(custody, amount)
	return nil
}

func (m *Memory) transferOut(token, to common.Address, amount *uint256.Int, undo *undoLog) error {
	custody := m.balance(token, m.custody)
	if custody.Lt(amount) {
		return fmt.Errorf("transfer out %s to %s: %w", token.Hex(), to.Hex(), ErrInsufficientBalance)
	}
	bal := m.balance(token, to)
	if _, overflow := new(uint256.Int).AddOverflow(bal, amount); overflow {
		return fmt.Errorf("transfer out %s to %s: %w", token.Hex(), to.Hex(), ErrBalanceOverflow)
	}

	undo.save(custody, bal)
	custody.Sub(custody, amount)
	bal.Add(bal, amount)
	return nil
}

type undoEntry struct {
	target *uint256.Int
	prev   uint256.Int
}

// undoLog records prior values of mutated cells, newest last.
type undoLog []undoEntry

func (u *undoLog) save(cells ...*uint256.Int) {
	if u == nil {
		return
	}
	for _, c := range cells {
		*u = append(*u, undoEntry{target: c, prev: *c})
	}
}

func (u *undoLog) revert() {
	for i := len(*u) - 1; i >= 0; i-- {
		e := (*u)[i]
		e.target.Set(&e.prev)
	}
	*u = (*u)[:0]
}

// Snapshot returns a deep copy of balances and allowances.
func (m *Memory) Snapshot() model.LedgerSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := model.LedgerSnapshot{
		Custody:    m.custody.Hex(),
		Balances:   make(map[string]map[string]string, len(m.balances)),
		Allowances: make(map[string]map[string]map[string]string, len(m.allowances)),
	}
	for token, holders := range m.balances {
		out := make(map[string]string, len(holders))
		for account, bal := range holders {
			if bal.IsZero() {
				continue
			}
			out[account.Hex()] = bal.Dec()
		}
		snap.Balances[token.Hex()] = out
	}
	for token, owners := range m.allowances {
		byOwner := make(map[string]map[string]string, len(owners))
		for owner, spenders := range owners {
			bySpender := make(map[string]string, len(spenders))
			for spender, amount := range spenders {
				if amount.IsZero() {
					continue
				}
				bySpender[spender.Hex()] = amount.Dec()
			}
			byOwner[owner.Hex()] = bySpender
		}
		snap.Allowances[token.Hex()] = byOwner
	}
	return snap
}

// RestoreMemory rebuilds a Memory ledger from a snapshot.
func RestoreMemory(snap model.LedgerSnapshot) (*Memory, error) {
	if !common.IsHexAddress(snap.Custody) {
		return nil, fmt.Errorf("invalid custody address: %q", snap.Custody)
	}
	m := NewMemory(common.HexToAddress(snap.Custody))

	for token, holders := range snap.Balances {
		tokenAddr, err := parseAddress(token)
		if err != nil {
			return nil, err
		}
		for account, value := range holders {
			accountAddr, err := parseAddress(account)
			if err != nil {
				return nil, err
			}
			amount, err := uint256.FromDecimal(value)
			if err != nil {
				return nil, fmt.Errorf("balance %s/%s: %w", token, account, err)
			}
			m.balance(tokenAddr, accountAddr).Set(amount)
		}
	}
	for token, owners := range snap.Allowances {
		tokenAddr, err := parseAddress(token)
		if err != nil {
			return nil, err
		}
		for owner, spenders := range owners {
			ownerAddr, err := parseAddress(owner)
			if err != nil {
				return nil, err
			}
			for spender, value := range spenders {
				spenderAddr, err := parseAddress(spender)
				if err != nil {
					return nil, err
				}
				amount, err := uint256.FromDecimal(value)
				if err != nil {
					return nil, fmt.Errorf("allowance %s/%s/%s: %w", token, owner, spender, err)
				}
				m.allowance(tokenAddr, ownerAddr, spenderAddr).Set(amount)
			}
		}
	}
	return m, nil
}

func (m *Memory) balance(token, account common.Address) *uint256.Int {
	holders, ok := m.balances[token]
	if !ok {
		holders = make(map[common.Address]*uint256.Int)
		m.balances[token] = holders
	}
	bal, ok := holders[account]
	if !ok {
		bal = new(uint256.Int)
		holders[account] = bal
	}
	return bal
}

func (m *Memory) allowance(token, owner, spender common.Address) *uint256.Int {
	owners, ok := m.allowances[token]
	if !ok {
		owners = make(map[common.Address]map[common.Address]*uint256.Int)
		m.allowances[token] = owners
	}
	spenders, ok := owners[owner]
	if !ok {
		spenders = make(map[common.Address]*uint256.Int)
		owners[owner] = spenders
	}
	amount, ok := spenders[spender]
	if !ok {
		amount = new(uint256.Int)
		spenders[spender] = amount
	}
	return amount
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}
