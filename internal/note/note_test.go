package note

import (
	"testing"

	"github.com/ccoin/shield/internal/keypair"
	"github.com/ccoin/shield/pkg/types"
)

func sampleNote(t *testing.T, amount uint64) (types.Note, *keypair.Keypair) {
	t.Helper()
	kp, err := keypair.Generate()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	n := types.Note{
		Amount:      amount,
		Blinding:    types.BlindingFromInt(123456789),
		OwnerPubKey: kp.PublicKey,
		AssetTag:    types.NativeAssetTag(),
		Index:       0,
	}
	return n, kp
}

func TestCommitmentDeterministic(t *testing.T) {
	n, _ := sampleNote(t, 1000)
	c1, err := Commitment(n)
	if err != nil {
		t.Fatalf("commitment: %v", err)
	}
	c2, err := Commitment(n)
	if err != nil {
		t.Fatalf("commitment: %v", err)
	}
	if c1 != c2 {
		t.Error("two constructions of the same note fields must yield identical commitments")
	}
}

func TestCommitmentChangesWithAnyField(t *testing.T) {
	n, _ := sampleNote(t, 1000)
	base, err := Commitment(n)
	if err != nil {
		t.Fatalf("commitment: %v", err)
	}

	variants := []types.Note{n, n, n}
	variants[0].Amount = 1001
	variants[1].Blinding = types.BlindingFromInt(987654321)
	variants[2].Index = 5 // index is not a commitment input; should NOT change it

	for i, v := range variants {
		c, err := Commitment(v)
		if err != nil {
			t.Fatalf("commitment: %v", err)
		}
		changed := c != base
		wantChanged := i != 2
		if changed != wantChanged {
			t.Errorf("variant %d: commitment changed=%v, want %v", i, changed, wantChanged)
		}
	}
}

func TestNullifierRequiresPrivateKey(t *testing.T) {
	n, kp := sampleNote(t, 500)
	commitment, err := Commitment(n)
	if err != nil {
		t.Fatalf("commitment: %v", err)
	}

	priv := kp.PrivateKeyField()
	nf1, err := Nullifier(commitment, n.Index, priv)
	if err != nil {
		t.Fatalf("nullifier: %v", err)
	}

	other, err := keypair.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	nf2, err := Nullifier(commitment, n.Index, other.PrivateKeyField())
	if err != nil {
		t.Fatalf("nullifier: %v", err)
	}

	if nf1 == nf2 {
		t.Error("nullifier must depend on the owner private key")
	}
}
