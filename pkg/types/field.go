// Package types defines core data structures for the shielded transaction engine.
package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// FieldSize is the BN254 scalar-field prime. Every commitment, nullifier,
// public key, and public-input hash is reduced modulo this value before it
// is fed to the circuit.
var FieldSize, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// FieldElement is a value in [0, FieldSize) represented as a 32-byte
// big-endian encoding, matching the on-wire layout of proof components and
// public signals (spec ext-data hash, Merkle root, nullifiers, commitments).
type FieldElement [32]byte

// ZeroField is the additive identity.
var ZeroField FieldElement

// FieldFromBigInt reduces n modulo FieldSize and encodes it big-endian.
// Negative n is reduced into [0, FieldSize) first.
func FieldFromBigInt(n *big.Int) FieldElement {
	r := new(big.Int).Mod(n, FieldSize)
	var fe FieldElement
	b := r.Bytes()
	copy(fe[32-len(b):], b)
	return fe
}

// BigInt decodes the field element as an unsigned big-endian integer.
func (f FieldElement) BigInt() *big.Int {
	return new(big.Int).SetBytes(f[:])
}

// Bytes returns the raw 32-byte big-endian encoding.
func (f FieldElement) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, f[:])
	return out
}

// IsZero reports whether the element is the zero field element.
func (f FieldElement) IsZero() bool {
	return f == ZeroField
}

// String renders the element as a 0x-prefixed hex string, the relayer's
// wire format for field elements.
func (f FieldElement) String() string {
	return "0x" + hex.EncodeToString(f[:])
}

// MarshalJSON encodes the element as a 0x-prefixed hex string.
func (f FieldElement) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON accepts either a 0x-prefixed hex string (the /merkle/root
// wire format) or a bare decimal string (the /merkle/proof wire format),
// left-padding short values to 32 bytes.
func (f *FieldElement) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)

	if hexDigits := strings.TrimPrefix(s, "0x"); hexDigits != s {
		if len(hexDigits)%2 == 1 {
			hexDigits = "0" + hexDigits
		}
		b, err := hex.DecodeString(hexDigits)
		if err != nil {
			return fmt.Errorf("types: decode field element hex: %w", err)
		}
		if len(b) > 32 {
			return fmt.Errorf("types: field element hex too long: %d bytes", len(b))
		}
		var out FieldElement
		copy(out[32-len(b):], b)
		*f = out
		return nil
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("types: decode field element decimal string %q", s)
	}
	*f = FieldFromBigInt(n)
	return nil
}
