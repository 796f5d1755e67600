package model

// PoolStatus is the lifecycle state of a pool.
type PoolStatus string

const (
	PoolOpen   PoolStatus = "open"
	PoolClosed PoolStatus = "closed"
)

// PoolView is the storage representation of a pool record.
// Amounts are base-10 strings in the asset's native precision.
type PoolView struct {
	ID                   uint64     `json:"id"`
	TokenA               string     `json:"token_a"`
	TokenB               string     `json:"token_b"`
	ReserveA             string     `json:"reserve_a"`
	ReserveB             string     `json:"reserve_b"`
	ExchangeRatePPM      uint64     `json:"exchange_rate_ppm"`
	SlippageTolerancePPM uint64     `json:"slippage_tolerance_ppm"`
	Status               PoolStatus `json:"status"`
	Provider             string     `json:"provider"`
}
