package model

// EngineSnapshot captures the pool table for persistence.
type EngineSnapshot struct {
	NextPoolID   uint64     `json:"next_pool_id"`
	LastEventSeq uint64     `json:"last_event_seq"`
	Pools        []PoolView `json:"pools"`
}

// LedgerSnapshot captures an in-memory ledger. Maps are keyed by hex
// addresses: token -> account -> amount, and token -> owner -> spender ->
// amount for allowances.
type LedgerSnapshot struct {
	Custody    string                                  `json:"custody"`
	Balances   map[string]map[string]string            `json:"balances"`
	Allowances map[string]map[string]map[string]string `json:"allowances"`
}

// State is the persisted replay state. Roles maps role name to member
// addresses. Curve and GlobalPairs record the engine settings the pools were
// created under.
type State struct {
	Engine      EngineSnapshot      `json:"engine"`
	Ledger      LedgerSnapshot      `json:"ledger"`
	Roles       map[string][]string `json:"roles,omitempty"`
	Curve       string              `json:"curve"`
	GlobalPairs bool                `json:"global_pairs"`
	LastSeq     uint64              `json:"last_seq"`
	UpdatedAt   string              `json:"updated_at"`
}
