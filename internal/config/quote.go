package config

import (
	"github.com/spf13/pflag"
)

// QuoteConfig holds the inputs of an offline price quote.
type QuoteConfig struct {
	ReserveA             string
	ReserveB             string
	ExchangeRatePPM      uint64
	SlippageTolerancePPM uint64
	Amount               string
	Direction            string
	Curve                string
	LogLevel             string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"direction": "buy",
		"curve":     "anchored_product",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	return QuoteConfig{
		ReserveA:             v.GetString("reserve-a"),
		ReserveB:             v.GetString("reserve-b"),
		ExchangeRatePPM:      v.GetUint64("rate-ppm"),
		SlippageTolerancePPM: v.GetUint64("tolerance-ppm"),
		Amount:               v.GetString("amount"),
		Direction:            v.GetString("direction"),
		Curve:                v.GetString("curve"),
		LogLevel:             v.GetString("log-level"),
	}, nil
}
