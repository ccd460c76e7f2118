package types

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TreeDepth is the fixed depth of the note-commitment Merkle tree.
const TreeDepth = 26

// Note is an owned amount of one asset inside the shielded pool (a UTXO).
// Commitment and Nullifier are derived, not stored independently of their
// inputs; callers obtain them from the note package rather than setting
// them directly.
type Note struct {
	// Amount is the value in base units.
	Amount uint64

	// Blinding is a random field element distinguishing notes with
	// otherwise-identical fields. Spec recommends a 9-digit random integer
	// (10^8..10^9-1) to bound ciphertext size; any value in [0, FieldSize)
	// is accepted.
	Blinding FieldElement

	// OwnerPubKey is Poseidon(owner_privkey) of the note's owner.
	OwnerPubKey FieldElement

	// AssetTag identifies the note's asset.
	AssetTag AssetTag

	// Index is the note's 0-based leaf position once inserted into the
	// tree. For dummy or not-yet-observed notes this is a placeholder that
	// the scanner overwrites once an inclusion proof is available.
	Index uint32
}

// BlindingFromInt builds a blinding field element from a plain integer,
// useful for deterministic test vectors and dummy-note construction.
func BlindingFromInt(v int64) FieldElement {
	return FieldFromBigInt(big.NewInt(v))
}

// blindingLow and blindingSpan give the recommended random blinding
// range as its lower bound and width: a 9-digit integer, 10^8 to 10^9-1.
var (
	blindingLow  = big.NewInt(100_000_000)
	blindingSpan = big.NewInt(900_000_000)
)

// RandomBlinding samples a cryptographically random blinding in the
// spec-recommended 9-digit range [10^8, 10^9).
func RandomBlinding() (FieldElement, error) {
	n, err := rand.Int(rand.Reader, blindingSpan)
	if err != nil {
		return FieldElement{}, fmt.Errorf("types: sample random blinding: %w", err)
	}
	return FieldFromBigInt(new(big.Int).Add(blindingLow, n)), nil
}

// IsDummy reports whether this note carries zero amount, the convention
// used for padding an input or output slot when a transaction has fewer
// than two genuine notes on that side.
func (n Note) IsDummy() bool {
	return n.Amount == 0
}
