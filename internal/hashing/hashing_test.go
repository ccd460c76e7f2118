package hashing

import (
	"testing"

	"github.com/ccoin/shield/pkg/types"
)

func TestPoseidonDeterministic(t *testing.T) {
	a := types.BlindingFromInt(7)
	b := types.BlindingFromInt(11)

	h1, err := Poseidon(a, b)
	if err != nil {
		t.Fatalf("poseidon: %v", err)
	}
	h2, err := Poseidon(a, b)
	if err != nil {
		t.Fatalf("poseidon: %v", err)
	}
	if h1 != h2 {
		t.Error("poseidon hash should be deterministic for identical inputs")
	}
}

func TestPoseidonSensitiveToOrder(t *testing.T) {
	a := types.BlindingFromInt(3)
	b := types.BlindingFromInt(9)

	h1 := MustPoseidon(a, b)
	h2 := MustPoseidon(b, a)
	if h1 == h2 {
		t.Error("poseidon hash should depend on argument order")
	}
}

func TestSHA256AsFieldReducesModField(t *testing.T) {
	f := SHA256AsField([]byte("ext-data"))
	if f.BigInt().Cmp(types.FieldSize) >= 0 {
		t.Error("sha256-as-field result must be reduced modulo FieldSize")
	}
}
