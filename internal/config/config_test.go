package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadReplayDefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
custody: "0xc0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0c0"
global-pairs: true
roles:
  provider:
    - "0x2000000000000000000000000000000000000002"
  buyer: "0x3000000000000000000000000000000000000003,0x3000000000000000000000000000000000000004"
`)

	flags := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.Int("batch-size", 100, "")
	if err := flags.Parse([]string{"--in", "ops.jsonl", "--batch-size", "7"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadReplay(path, flags)
	if err != nil {
		t.Fatalf("LoadReplay: %v", err)
	}
	if cfg.Input != "ops.jsonl" || cfg.BatchSize != 7 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if !cfg.GlobalPairs || cfg.Curve != "anchored_product" || cfg.StateFile != "./data/state.json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Roles["provider"]) != 1 || len(cfg.Roles["buyer"]) != 2 {
		t.Fatalf("unexpected roles: %v", cfg.Roles)
	}
}

func TestLoadReconcileEnv(t *testing.T) {
	t.Setenv("TOKENSWAP_RPC", "http://localhost:8545")
	t.Setenv("TOKENSWAP_MAX_RETRIES", "2")

	cfg, err := LoadReconcile(writeConfig(t, "block: 100\n"), nil)
	if err != nil {
		t.Fatalf("LoadReconcile: %v", err)
	}
	if cfg.RPCURL != "http://localhost:8545" || cfg.MaxRetries != 2 || cfg.Block != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("unexpected backoff %s", cfg.RetryBackoff)
	}
}

func TestLoadQuoteMissingFile(t *testing.T) {
	if _, err := LoadQuote(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for explicit missing config file")
	}
}
