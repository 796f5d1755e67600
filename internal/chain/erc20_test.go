package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"tokenSwap/internal/model"
)

func TestBalanceOfABIRoundTrip(t *testing.T) {
	parsed, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	owner := common.HexToAddress("0x00000000000000000000000000000000000000c0")
	input, err := parsed.Pack("balanceOf", owner)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(input) != 4+32 {
		t.Fatalf("unexpected calldata length %d", len(input))
	}

	want, _ := new(big.Int).SetString("30000000000000000000", 10)
	output, err := parsed.Methods["balanceOf"].Outputs.Pack(want)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	values, err := parsed.Unpack("balanceOf", output)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	got, err := asUint256(values[0])
	if err != nil {
		t.Fatalf("asUint256: %v", err)
	}
	if got.Dec() != want.String() {
		t.Fatalf("expected %s, got %s", want, got.Dec())
	}
}

func TestAsUint256Rejects(t *testing.T) {
	if _, err := asUint256(big.NewInt(-1)); err == nil {
		t.Fatalf("expected error for negative value")
	}
	if _, err := asUint256(new(big.Int).Lsh(big.NewInt(1), 256)); err == nil {
		t.Fatalf("expected error for 2^256")
	}
	if _, err := asUint256(uint64(5)); err == nil {
		t.Fatalf("expected error for non big.Int")
	}
}

func TestBytes32ToString(t *testing.T) {
	var raw [32]byte
	copy(raw[:], "MKR")
	got, ok := bytes32ToString(raw)
	if !ok || got != "MKR" {
		t.Fatalf("unexpected %q %v", got, ok)
	}
	if _, ok := bytes32ToString("MKR"); ok {
		t.Fatalf("expected string input to be rejected")
	}
}

func TestAtBlockSharesCache(t *testing.T) {
	base := &Client{tokens: NewTokenMetaCache()}
	pinned := base.AtBlock(100)
	if pinned.block == nil || pinned.block.Uint64() != 100 {
		t.Fatalf("expected pinned block 100")
	}
	if base.block != nil {
		t.Fatalf("base client must stay on latest")
	}
	if base.AtBlock(0).block != nil {
		t.Fatalf("zero must read latest")
	}

	token := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	pinned.tokens.Set(token, model.TokenMeta{Address: token.Hex(), Decimals: 18, Symbol: "AAA"})
	if _, ok := base.tokens.Get(token); !ok {
		t.Fatalf("expected shared token cache")
	}
}
