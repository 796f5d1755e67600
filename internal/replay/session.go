package replay

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/ledger"
	"tokenSwap/internal/model"
	"tokenSwap/internal/pricing"
	"tokenSwap/internal/swap"
)

// SessionConfig describes how to build a Session when no state exists. A
// restored session must agree with it on custody, curve and pair policy;
// Roles only seed a fresh session.
type SessionConfig struct {
	Custody     common.Address
	Roles       map[acl.Role][]common.Address
	Curve       pricing.Curve
	GlobalPairs bool
	Logger      *zap.Logger
}

// Session is the engine together with the ledger and role table it runs
// against, plus the last applied operation sequence.
type Session struct {
	Engine  *swap.Engine
	Ledger  *ledger.Memory
	Roles   *acl.RoleTable
	LastSeq uint64

	globalPairs bool
}

// NewSession builds a fresh session, or restores one when state is non-nil.
// A restored session keeps exactly the roles recorded in state, so grants
// and revocations made by earlier operations survive a restart.
func NewSession(state *model.State, cfg SessionConfig) (*Session, error) {
	roles := acl.NewRoleTable()
	s := &Session{Roles: roles, globalPairs: cfg.GlobalPairs}
	if cfg.Curve == nil {
		cfg.Curve = pricing.AnchoredProduct{}
	}

	opts := swap.Options{
		Authorizer:  roles,
		Curve:       cfg.Curve,
		GlobalPairs: cfg.GlobalPairs,
		Logger:      cfg.Logger,
	}

	if state == nil {
		s.Ledger = ledger.NewMemory(cfg.Custody)
		opts.Ledger = s.Ledger
		engine, err := swap.New(opts)
		if err != nil {
			return nil, err
		}
		s.Engine = engine
		roles.Load(cfg.Roles)
		return s, nil
	}

	l, err := ledger.RestoreMemory(state.Ledger)
	if err != nil {
		return nil, fmt.Errorf("restore ledger: %w", err)
	}
	if l.Custody() != cfg.Custody {
		return nil, fmt.Errorf("state custody %s does not match configured %s", l.Custody().Hex(), cfg.Custody.Hex())
	}
	// States written before the settings were recorded carry an empty curve.
	if state.Curve != "" && state.Curve != cfg.Curve.Name() {
		return nil, fmt.Errorf("state curve %s does not match configured %s", state.Curve, cfg.Curve.Name())
	}
	if state.Curve != "" && state.GlobalPairs != cfg.GlobalPairs {
		return nil, fmt.Errorf("state global_pairs=%t does not match configured %t", state.GlobalPairs, cfg.GlobalPairs)
	}
	restored, err := acl.ParseMembers(state.Roles)
	if err != nil {
		return nil, fmt.Errorf("restore roles: %w", err)
	}
	roles.Load(restored)

	opts.Ledger = l
	engine, err := swap.Restore(state.Engine, opts)
	if err != nil {
		return nil, fmt.Errorf("restore engine: %w", err)
	}
	s.Engine = engine
	s.Ledger = l
	s.LastSeq = state.LastSeq
	return s, nil
}

// State captures the session for persistence.
func (s *Session) State() model.State {
	return model.State{
		Engine:      s.Engine.Snapshot(),
		Ledger:      s.Ledger.Snapshot(),
		Roles:       s.Roles.Snapshot(),
		Curve:       s.Engine.Curve().Name(),
		GlobalPairs: s.globalPairs,
		LastSeq:     s.LastSeq,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}
