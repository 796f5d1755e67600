package model

// Operation kinds accepted by the replay runner.
const (
	OpGrantRole       = "grantRole"
	OpRevokeRole      = "revokeRole"
	OpMint            = "mint"
	OpApprove         = "approve"
	OpCreatePool      = "createPool"
	OpClosePool       = "closePool"
	OpAddLiquidity    = "addLiquidity"
	OpRemoveLiquidity = "removeLiquidity"
	OpBuy             = "buy"
	OpSell            = "sell"
)

// Operation is one line of a replay script. Only the fields relevant to Op
// are read; amounts are base-10 strings.
type Operation struct {
	Seq                  uint64 `json:"seq"`
	Op                   string `json:"op"`
	Caller               string `json:"caller"`
	PoolID               uint64 `json:"pool_id,omitempty"`
	TokenA               string `json:"token_a,omitempty"`
	TokenB               string `json:"token_b,omitempty"`
	AmountA              string `json:"amount_a,omitempty"`
	AmountB              string `json:"amount_b,omitempty"`
	Amount               string `json:"amount,omitempty"`
	ExchangeRatePPM      uint64 `json:"exchange_rate_ppm,omitempty"`
	SlippageTolerancePPM uint64 `json:"slippage_tolerance_ppm,omitempty"`
	Token                string `json:"token,omitempty"`
	Account              string `json:"account,omitempty"`
	Role                 string `json:"role,omitempty"`
}
