package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEventAmountsEncodeAsStrings(t *testing.T) {
	ev := Event{
		Seq:    3,
		Name:   EventBought,
		PoolID: 1,
		Data: TradeData{
			Trader:    "0x3000000000000000000000000000000000000004",
			AmountIn:  "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			AmountOut: "1",
		},
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, `"amount_in":"115792089237316195423570985008687907853269984665640564039457584007913129639935"`) {
		t.Fatalf("expected full-precision string amount, got %s", text)
	}
	if !strings.Contains(text, `"name":"Bought"`) || !strings.Contains(text, `"pool_id":1`) {
		t.Fatalf("unexpected encoding %s", text)
	}
}

func TestOperationOmitsUnusedFields(t *testing.T) {
	raw, err := json.Marshal(Operation{Seq: 1, Op: OpClosePool, Caller: "0x01"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "amount") || strings.Contains(string(raw), "token") {
		t.Fatalf("expected unused fields omitted, got %s", raw)
	}
}
