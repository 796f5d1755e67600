package acl

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Role is a capability granted to an account.
type Role string

const (
	Admin    Role = "ADMIN"
	Provider Role = "PROVIDER"
	Buyer    Role = "BUYER"
	Seller   Role = "SELLER"
)

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrNotAdmin    = errors.New("caller is not an admin")
)

// ParseRole parses a role name case-insensitively.
func ParseRole(name string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(name))); r {
	case Admin, Provider, Buyer, Seller:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
}

// Authorizer decides whether caller holds role.
type Authorizer interface {
	Authorize(caller common.Address, role Role) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(caller common.Address, role Role) bool

func (f AuthorizerFunc) Authorize(caller common.Address, role Role) bool {
	return f(caller, role)
}

// AllowAll grants every role to every caller.
var AllowAll Authorizer = AuthorizerFunc(func(common.Address, Role) bool { return true })

// RoleTable is an in-memory role registry. Grants and revocations require
// the caller to hold Admin.
type RoleTable struct {
	mu    sync.RWMutex
	roles map[Role]map[common.Address]struct{}
}

// NewRoleTable seeds the table with bootstrap admins.
func NewRoleTable(admins ...common.Address) *RoleTable {
	t := &RoleTable{roles: make(map[Role]map[common.Address]struct{})}
	for _, admin := range admins {
		t.set(admin, Admin)
	}
	return t
}

func (t *RoleTable) Authorize(caller common.Address, role Role) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.roles[role][caller]
	return ok
}

func (t *RoleTable) Grant(caller, account common.Address, role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if !t.Authorize(caller, Admin) {
		return fmt.Errorf("grant %s to %s: %w", role, account.Hex(), ErrNotAdmin)
	}
	t.set(account, role)
	return nil
}

func (t *RoleTable) Revoke(caller, account common.Address, role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if !t.Authorize(caller, Admin) {
		return fmt.Errorf("revoke %s from %s: %w", role, account.Hex(), ErrNotAdmin)
	}
	t.mu.Lock()
	delete(t.roles[role], account)
	t.mu.Unlock()
	return nil
}

// Members returns the accounts holding role, sorted by address.
func (t *RoleTable) Members(role Role) []common.Address {
	t.mu.RLock()
	out := make([]common.Address, 0, len(t.roles[role]))
	for addr := range t.roles[role] {
		out = append(out, addr)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// Load grants the given memberships without an admin check; used to
// bootstrap from configuration.
func (t *RoleTable) Load(members map[Role][]common.Address) {
	for role, accounts := range members {
		for _, account := range accounts {
			t.set(account, role)
		}
	}
}

func (t *RoleTable) set(account common.Address, role Role) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.roles[role]
	if !ok {
		set = make(map[common.Address]struct{})
		t.roles[role] = set
	}
	set[account] = struct{}{}
}

// Snapshot returns every membership keyed by role name, addresses in hex.
func (t *RoleTable) Snapshot() map[string][]string {
	out := make(map[string][]string)
	for _, role := range []Role{Admin, Provider, Buyer, Seller} {
		members := t.Members(role)
		if len(members) == 0 {
			continue
		}
		hexes := make([]string, len(members))
		for i, m := range members {
			hexes[i] = m.Hex()
		}
		out[string(role)] = hexes
	}
	return out
}

// ParseMembers converts role names and hex addresses, as found in config
// files and snapshots, into a membership map.
func ParseMembers(in map[string][]string) (map[Role][]common.Address, error) {
	out := make(map[Role][]common.Address, len(in))
	for name, accounts := range in {
		role, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		for _, account := range accounts {
			account = strings.TrimSpace(account)
			if !common.IsHexAddress(account) {
				return nil, fmt.Errorf("role %s: invalid address %q", role, account)
			}
			out[role] = append(out[role], common.HexToAddress(account))
		}
	}
	return out, nil
}
