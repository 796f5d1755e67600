package model

// OperationError records a rejected replay operation.
type OperationError struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Caller string `json:"caller"`
	PoolID uint64 `json:"pool_id,omitempty"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}
