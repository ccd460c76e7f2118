package extdata

import (
	"testing"

	"github.com/ccoin/shield/pkg/types"
)

func sampleExtData() types.ExtData {
	var ed types.ExtData
	ed.Recipient[0] = 1
	ed.ExtAmount = -5_000_000
	ed.Ciphertext1 = []byte("c1")
	ed.Ciphertext2 = []byte("c2")
	ed.Fee = 15_000
	ed.FeeRecipient[0] = 2
	ed.AssetTag = types.NativeAssetTag()
	return ed
}

func TestHashDeterministic(t *testing.T) {
	ed := sampleExtData()
	h1 := Hash(ed, types.AssetTagModeRaw)
	h2 := Hash(ed, types.AssetTagModeRaw)
	if h1 != h2 {
		t.Error("identical ext-data tuples must hash identically")
	}
}

func TestHashChangesOnAnyFieldFlip(t *testing.T) {
	base := sampleExtData()
	baseHash := Hash(base, types.AssetTagModeRaw)

	flip := func(mutate func(*types.ExtData)) bool {
		ed := sampleExtData()
		mutate(&ed)
		return Hash(ed, types.AssetTagModeRaw) != baseHash
	}

	cases := []func(*types.ExtData){
		func(e *types.ExtData) { e.Recipient[0] ^= 0xFF },
		func(e *types.ExtData) { e.ExtAmount += 1 },
		func(e *types.ExtData) { e.Ciphertext1 = append(e.Ciphertext1, 0) },
		func(e *types.ExtData) { e.Ciphertext2 = append(e.Ciphertext2, 0) },
		func(e *types.ExtData) { e.Fee += 1 },
		func(e *types.ExtData) { e.FeeRecipient[0] ^= 0xFF },
	}

	for i, c := range cases {
		if !flip(c) {
			t.Errorf("case %d: expected hash to change", i)
		}
	}
}

func TestTwosComplementEncoding(t *testing.T) {
	ed := sampleExtData()
	ed.ExtAmount = -5_000_000

	buf := Serialize(ed, types.AssetTagModeRaw)
	// recipient(32) precedes extAmount(8).
	amountBytes := buf[32:40]

	want := uint64(1<<64-1) - uint64(5_000_000) + 1 // 2^64 - 5_000_000
	got := uint64(0)
	for i := 7; i >= 0; i-- {
		got = got<<8 | uint64(amountBytes[i])
	}
	if got != want {
		t.Errorf("two's complement mismatch: got %d, want %d", got, want)
	}
}

func TestAssetTagModesDiffer(t *testing.T) {
	ed := sampleExtData()
	raw := Hash(ed, types.AssetTagModeRaw)
	numeric := Hash(ed, types.AssetTagModeNumeric)
	if raw == numeric {
		t.Error("raw and numeric asset-tag encodings should generally diverge for a non-trivial tag")
	}
}
