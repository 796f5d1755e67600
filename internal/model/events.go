package model

// Event names emitted by the engine.
const (
	EventPoolCreated     = "PoolCreated"
	EventPoolClosed      = "PoolClosed"
	EventPoolDataUpdated = "PoolDataUpdated"
	EventBought          = "Bought"
	EventSold            = "Sold"
)

// PoolCreatedData is the PoolCreated event payload.
type PoolCreatedData struct {
	TokenA   string `json:"token_a"`
	TokenB   string `json:"token_b"`
	AmountA  string `json:"amount_a"`
	AmountB  string `json:"amount_b"`
	Provider string `json:"provider"`
}

// PoolClosedData is the PoolClosed event payload.
type PoolClosedData struct {
	Provider  string `json:"provider"`
	ReturnedA string `json:"returned_a"`
	ReturnedB string `json:"returned_b"`
}

// PoolDataUpdatedData is the PoolDataUpdated event payload.
type PoolDataUpdatedData struct {
	ReserveA string `json:"reserve_a"`
	ReserveB string `json:"reserve_b"`
}

// TradeData is the Bought and Sold event payload.
type TradeData struct {
	Trader    string `json:"trader"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}
