package model

// ReserveMismatch reports a token whose summed open-pool reserves differ
// from the custody balance.
type ReserveMismatch struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol,omitempty"`
	Decimals  uint8  `json:"decimals"`
	Reserves  string `json:"reserves"`
	Custody   string `json:"custody"`
	Formatted string `json:"formatted"`
}
