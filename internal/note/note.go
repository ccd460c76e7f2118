// Package note computes the derived fields of a shielded UTXO: its
// commitment and, given an owner's private key, its nullifier (spec §3).
package note

import (
	"github.com/ccoin/shield/internal/hashing"
	"github.com/ccoin/shield/pkg/types"
)

// Commitment computes Poseidon(amount, owner_pubkey, blinding, asset_tag).
// It is a pure function of the note's public fields: two notes built from
// identical fields always yield identical commitments.
func Commitment(n types.Note) (types.FieldElement, error) {
	amount := types.FieldFromBigInt(bigIntFromUint64(n.Amount))
	return hashing.Poseidon(amount, n.OwnerPubKey, n.Blinding, types.FieldElement(n.AssetTag))
}

// Nullifier computes Poseidon(commitment, index, Poseidon(owner_privkey,
// commitment, index)). It requires the owner's private key and therefore
// reveals nothing to anyone who only knows the commitment.
func Nullifier(commitment types.FieldElement, index uint32, ownerPrivateKey types.FieldElement) (types.FieldElement, error) {
	idxField := types.FieldFromBigInt(bigIntFromUint64(uint64(index)))
	sig, err := hashing.Poseidon(ownerPrivateKey, commitment, idxField)
	if err != nil {
		return types.FieldElement{}, err
	}
	return hashing.Poseidon(commitment, idxField, sig)
}

// Derive computes both the commitment and, when ownerPrivateKey is
// non-nil, the nullifier for a note in one call.
func Derive(n types.Note, ownerPrivateKey *types.FieldElement) (commitment types.FieldElement, nullifier types.FieldElement, err error) {
	commitment, err = Commitment(n)
	if err != nil {
		return
	}
	if ownerPrivateKey != nil {
		nullifier, err = Nullifier(commitment, n.Index, *ownerPrivateKey)
	}
	return
}
