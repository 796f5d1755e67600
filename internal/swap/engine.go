package swap

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenSwap/internal/acl"
	"tokenSwap/internal/ledger"
	"tokenSwap/internal/model"
	"tokenSwap/internal/pricing"
)

// Options configures an Engine.
type Options struct {
	Ledger     ledger.Ledger
	Authorizer acl.Authorizer
	// Curve defaults to pricing.AnchoredProduct.
	Curve pricing.Curve
	// GlobalPairs makes (tokenA, tokenB) unique across providers while open.
	GlobalPairs bool
	Logger      *zap.Logger
}

// Engine owns the pool table and executes every pool operation.
// Operations on one pool are serialized by that pool's lock; operations on
// different pools proceed independently.
type Engine struct {
	ledger      ledger.Ledger
	auth        acl.Authorizer
	curve       pricing.Curve
	globalPairs bool
	logger      *zap.Logger
	journal     *Journal

	mu    sync.RWMutex
	pools []*entry
	open  map[pairKey]uint64
}

type entry struct {
	mu   sync.Mutex
	pool Pool
}

// New builds an empty Engine.
func New(opts Options) (*Engine, error) {
	return newEngine(opts, 0)
}

func newEngine(opts Options, lastSeq uint64) (*Engine, error) {
	if opts.Ledger == nil {
		return nil, fmt.Errorf("ledger is nil")
	}
	if opts.Authorizer == nil {
		return nil, fmt.Errorf("authorizer is nil")
	}
	if opts.Curve == nil {
		opts.Curve = pricing.AnchoredProduct{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		ledger:      opts.Ledger,
		auth:        opts.Authorizer,
		curve:       opts.Curve,
		globalPairs: opts.GlobalPairs,
		logger:      opts.Logger,
		journal:     NewJournal(lastSeq),
		open:        make(map[pairKey]uint64),
	}, nil
}

// Restore rebuilds an Engine from a snapshot. Pool ids must be dense and
// ordered, and at most one open pool may exist per pair key.
func Restore(snap model.EngineSnapshot, opts Options) (*Engine, error) {
	e, err := newEngine(opts, snap.LastEventSeq)
	if err != nil {
		return nil, err
	}
	if uint64(len(snap.Pools)) != snap.NextPoolID {
		return nil, fmt.Errorf("snapshot has %d pools, next id %d", len(snap.Pools), snap.NextPoolID)
	}

	e.pools = make([]*entry, 0, len(snap.Pools))
	for i, view := range snap.Pools {
		if view.ID != uint64(i) {
			return nil, fmt.Errorf("snapshot pool %d at index %d", view.ID, i)
		}
		p, err := PoolFromView(view)
		if err != nil {
			return nil, err
		}
		if p.Status == model.PoolOpen {
			key := e.keyFor(p.TokenA, p.TokenB, p.Provider)
			if _, dup := e.open[key]; dup {
				return nil, fmt.Errorf("snapshot pool %d: %w", p.ID, ErrDuplicatePool)
			}
			e.open[key] = p.ID
		}
		e.pools = append(e.pools, &entry{pool: p})
	}
	return e, nil
}

// Journal exposes the committed event log.
func (e *Engine) Journal() *Journal {
	return e.journal
}

// Curve returns the pricing function in use.
func (e *Engine) Curve() pricing.Curve {
	return e.curve
}

// GetPool returns a copy of the pool record.
func (e *Engine) GetPool(poolID uint64) (Pool, error) {
	ent, err := e.lookup(poolID)
	if err != nil {
		return Pool{}, poolErr("getPool", poolID, err)
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.pool.clone(), nil
}

// Pools returns copies of every pool, open and closed, in id order.
func (e *Engine) Pools() []Pool {
	e.mu.RLock()
	entries := make([]*entry, len(e.pools))
	copy(entries, e.pools)
	e.mu.RUnlock()

	out := make([]Pool, 0, len(entries))
	for _, ent := range entries {
		ent.mu.Lock()
		out = append(out, ent.pool.clone())
		ent.mu.Unlock()
	}
	return out
}

// OpenPoolFor returns the id of the open pool for the pair and provider.
// Under GlobalPairs the provider is ignored.
func (e *Engine) OpenPoolFor(tokenA, tokenB, provider common.Address) (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.open[e.keyFor(tokenA, tokenB, provider)]
	return id, ok
}

// Snapshot captures the pool table and the journal position.
func (e *Engine) Snapshot() model.EngineSnapshot {
	pools := e.Pools()
	views := make([]model.PoolView, 0, len(pools))
	for _, p := range pools {
		views = append(views, p.View())
	}
	return model.EngineSnapshot{
		NextPoolID:   uint64(len(views)),
		LastEventSeq: e.journal.LastSeq(),
		Pools:        views,
	}
}

func (e *Engine) lookup(poolID uint64) (*entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if poolID >= uint64(len(e.pools)) {
		return nil, ErrPoolNotFound
	}
	return e.pools[poolID], nil
}

// lockOpen returns the locked entry for an open pool. The caller unlocks.
func (e *Engine) lockOpen(poolID uint64) (*entry, error) {
	ent, err := e.lookup(poolID)
	if err != nil {
		return nil, err
	}
	ent.mu.Lock()
	if ent.pool.Status != model.PoolOpen {
		ent.mu.Unlock()
		return nil, ErrPoolNotOpen
	}
	return ent, nil
}

func (e *Engine) authorize(caller common.Address, role acl.Role) error {
	if !e.auth.Authorize(caller, role) {
		return fmt.Errorf("%w: %s lacks %s", ErrUnauthorized, caller.Hex(), role)
	}
	return nil
}

func (e *Engine) keyFor(tokenA, tokenB, provider common.Address) pairKey {
	if e.globalPairs {
		return pairKey{tokenA: tokenA, tokenB: tokenB}
	}
	return pairKey{tokenA: tokenA, tokenB: tokenB, provider: provider}
}

func (e *Engine) reject(op string, poolID uint64, caller common.Address, err error) {
	e.logger.Debug("operation rejected",
		zap.String("op", op),
		zap.Uint64("pool_id", poolID),
		zap.String("caller", caller.Hex()),
		zap.Error(err),
	)
}
