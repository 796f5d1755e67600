package config

import (
	"github.com/spf13/pflag"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Input       string
	Events      string
	Errors      string
	StateFile   string
	StateName   string
	PGDSN       string
	Custody     string
	Admins      []string
	Roles       map[string][]string
	Curve       string
	GlobalPairs bool
	BatchSize   int
	Reconcile   bool
	LogLevel    string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"events":     "./data/events.jsonl",
		"errors":     "./data/operation_errors.jsonl",
		"state-file": "./data/state.json",
		"state-name": "tokenswap",
		"curve":      "anchored_product",
		"batch-size": 100,
		"reconcile":  true,
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	return ReplayConfig{
		Input:       v.GetString("in"),
		Events:      v.GetString("events"),
		Errors:      v.GetString("errors"),
		StateFile:   v.GetString("state-file"),
		StateName:   v.GetString("state-name"),
		PGDSN:       v.GetString("pg-dsn"),
		Custody:     v.GetString("custody"),
		Admins:      getStringSlice(v, "admin"),
		Roles:       getRoles(v, "roles"),
		Curve:       v.GetString("curve"),
		GlobalPairs: v.GetBool("global-pairs"),
		BatchSize:   v.GetInt("batch-size"),
		Reconcile:   v.GetBool("reconcile"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}
