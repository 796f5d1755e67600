package acl

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	root     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	provider = common.HexToAddress("0x2000000000000000000000000000000000000002")
	stranger = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func TestParseRole(t *testing.T) {
	for _, name := range []string{"admin", "PROVIDER", " Buyer ", "seller"} {
		if _, err := ParseRole(name); err != nil {
			t.Fatalf("ParseRole(%q): %v", name, err)
		}
	}
	if _, err := ParseRole("owner"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestRoleTableGrantRevoke(t *testing.T) {
	table := NewRoleTable(root)

	if table.Authorize(provider, Provider) {
		t.Fatalf("provider must not hold role before grant")
	}
	if err := table.Grant(root, provider, Provider); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !table.Authorize(provider, Provider) {
		t.Fatalf("provider should hold role after grant")
	}
	if table.Authorize(provider, Buyer) {
		t.Fatalf("grant must not leak into other roles")
	}

	if err := table.Grant(stranger, stranger, Admin); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if err := table.Revoke(provider, provider, Provider); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}

	if err := table.Revoke(root, provider, Provider); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if table.Authorize(provider, Provider) {
		t.Fatalf("provider should lose role after revoke")
	}
}

func TestRoleTableLoadMembers(t *testing.T) {
	table := NewRoleTable()
	table.Load(map[Role][]common.Address{
		Buyer: {stranger, provider},
	})

	members := table.Members(Buyer)
	if len(members) != 2 || members[0] != provider || members[1] != stranger {
		t.Fatalf("members mismatch: %v", members)
	}
}

func TestParseMembersAndSnapshot(t *testing.T) {
	members, err := ParseMembers(map[string][]string{
		"provider": {provider.Hex()},
		"ADMIN":    {" " + root.Hex() + " "},
	})
	if err != nil {
		t.Fatalf("ParseMembers: %v", err)
	}

	table := NewRoleTable()
	table.Load(members)
	snap := table.Snapshot()
	if len(snap) != 2 || snap["PROVIDER"][0] != provider.Hex() || snap["ADMIN"][0] != root.Hex() {
		t.Fatalf("unexpected snapshot %v", snap)
	}

	if _, err := ParseMembers(map[string][]string{"owner": {root.Hex()}}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if _, err := ParseMembers(map[string][]string{"buyer": {"0x12"}}); err == nil {
		t.Fatalf("expected invalid address error")
	}
}
