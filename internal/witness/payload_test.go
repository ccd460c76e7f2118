package witness

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/ccoin/shield/pkg/types"
)

func TestInstructionPayloadLayout(t *testing.T) {
	proof := EncodedProof{}
	for i := range proof.PiA {
		proof.PiA[i] = byte(i)
	}
	signals := PublicSignals{
		Root:         types.FieldFromBigInt(big.NewInt(1)),
		PublicAmount: types.FieldFromBigInt(big.NewInt(2)),
		ExtDataHash:  types.FieldFromBigInt(big.NewInt(3)),
	}
	ct1 := []byte("hello")
	ct2 := []byte("world!!")

	payload := InstructionPayload(proof, signals, -10_000_000, 30_000, ct1, ct2, false)

	if len(payload) < 8 {
		t.Fatalf("payload too short: %d bytes", len(payload))
	}
	for i, b := range NativeDiscriminator {
		if payload[i] != b {
			t.Fatalf("discriminator byte %d: got %d want %d", i, payload[i], b)
		}
	}

	splPayload := InstructionPayload(proof, signals, -10_000_000, 30_000, ct1, ct2, true)
	for i, b := range FungibleDiscriminator {
		if splPayload[i] != b {
			t.Fatalf("spl discriminator byte %d: got %d want %d", i, splPayload[i], b)
		}
	}

	piaStart := 8
	if payload[piaStart] != 0 || payload[piaStart+63] != 63 {
		t.Errorf("pi_a not placed at expected offset")
	}

	extAmountOffset := 8 + 64 + 128 + 64 + 32*7
	gotExtAmount := int64(binary.LittleEndian.Uint64(payload[extAmountOffset : extAmountOffset+8]))
	if gotExtAmount != -10_000_000 {
		t.Errorf("extAmount roundtrip: got %d", gotExtAmount)
	}

	feeOffset := extAmountOffset + 8
	gotFee := binary.LittleEndian.Uint64(payload[feeOffset : feeOffset+8])
	if gotFee != 30_000 {
		t.Errorf("fee roundtrip: got %d want 30000", gotFee)
	}

	ctOffset := feeOffset + 8
	ct1Len := binary.LittleEndian.Uint32(payload[ctOffset : ctOffset+4])
	if int(ct1Len) != len(ct1) {
		t.Errorf("ciphertext1 length prefix: got %d want %d", ct1Len, len(ct1))
	}
	gotCt1 := payload[ctOffset+4 : ctOffset+4+int(ct1Len)]
	if string(gotCt1) != string(ct1) {
		t.Errorf("ciphertext1 bytes: got %q want %q", gotCt1, ct1)
	}
}

func TestProofBlobExcludesCiphertexts(t *testing.T) {
	proof := EncodedProof{}
	signals := PublicSignals{}
	blob := ProofBlob(proof, signals, 0, 0, false)
	want := 8 + 64 + 128 + 64 + 32*7 + 8 + 8
	if len(blob) != want {
		t.Errorf("proof blob length: got %d want %d", len(blob), want)
	}
}
