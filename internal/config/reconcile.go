package config

import (
	"time"

	"github.com/spf13/pflag"
)

// ReconcileConfig holds configuration for on-chain reconciliation.
type ReconcileConfig struct {
	RPCURL       string
	StateFile    string
	StateName    string
	PGDSN        string
	Custody      string
	Block        uint64
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadReconcile merges config file, environment variables, and flags into ReconcileConfig.
func LoadReconcile(cfgFile string, flags *pflag.FlagSet) (ReconcileConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"state-file":    "./data/state.json",
		"state-name":    "tokenswap",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
	})
	if err != nil {
		return ReconcileConfig{}, err
	}

	return ReconcileConfig{
		RPCURL:       v.GetString("rpc"),
		StateFile:    v.GetString("state-file"),
		StateName:    v.GetString("state-name"),
		PGDSN:        v.GetString("pg-dsn"),
		Custody:      v.GetString("custody"),
		Block:        v.GetUint64("block"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}
