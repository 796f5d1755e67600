package postgres

import (
	"context"
	"os"
	"testing"

	"tokenSwap/internal/model"
)

// Runs only against a disposable database named by TOKENSWAP_TEST_PG_DSN.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TOKENSWAP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TOKENSWAP_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestStateRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	name := "test-" + t.Name()

	want := model.State{
		Engine: model.EngineSnapshot{NextPoolID: 1, LastEventSeq: 1, Pools: []model.PoolView{{
			ID: 0, TokenA: "0xaa", TokenB: "0xbb", ReserveA: "30", ReserveB: "15",
			ExchangeRatePPM: 2_000_000, Status: model.PoolOpen, Provider: "0x01",
		}}},
		LastSeq: 7,
	}
	if err := store.SaveState(ctx, name, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.LoadState(ctx, name)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.LastSeq != 7 || len(got.Engine.Pools) != 1 || got.Engine.Pools[0].ReserveA != "30" {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestPutEventBatchIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	events := []model.Event{{Seq: 900001, Name: model.EventPoolClosed, Data: model.PoolClosedData{ReturnedA: "1"}}}
	if err := store.PutEventBatch(ctx, events); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.PutEventBatch(ctx, events); err != nil {
		t.Fatalf("second insert: %v", err)
	}
}
