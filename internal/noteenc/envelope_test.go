package noteenc

import (
	"testing"

	"github.com/ccoin/shield/pkg/types"
)

func testKey(seed byte) [31]byte {
	var k [31]byte
	for i := range k {
		k[i] = seed + byte(i)
	}
	return k
}

func TestRoundTrip(t *testing.T) {
	key := testKey(1)
	p := Plaintext{
		Amount:   10_000_000,
		Blinding: types.BlindingFromInt(555555555),
		Index:    7,
		AssetTag: types.NativeAssetTag(),
	}

	envelope, err := Encrypt(key, p)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, err := Decrypt(key, envelope)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	if got != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestDecryptWrongKeyFailsAuth(t *testing.T) {
	key := testKey(1)
	wrongKey := testKey(2)

	envelope, err := Encrypt(key, Plaintext{Amount: 1, Blinding: types.BlindingFromInt(1), AssetTag: types.NativeAssetTag()})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := Decrypt(wrongKey, envelope); err != ErrAuthFailed {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDecryptTamperedCiphertextFailsAuth(t *testing.T) {
	key := testKey(3)
	envelope, err := Encrypt(key, Plaintext{Amount: 42, Blinding: types.BlindingFromInt(2), AssetTag: types.NativeAssetTag()})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tampered := append([]byte(nil), envelope...)
	tampered[len(tampered)-1] ^= 0xFF

	if _, err := Decrypt(key, tampered); err != ErrAuthFailed {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestDecryptTooShortFailsAuth(t *testing.T) {
	key := testKey(4)
	if _, err := Decrypt(key, []byte{1, 2, 3}); err != ErrAuthFailed {
		t.Errorf("expected ErrAuthFailed for short input, got %v", err)
	}
}
