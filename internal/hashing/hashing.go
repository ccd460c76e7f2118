// Package hashing adapts the two hash functions the shielded pool relies
// on: Poseidon over the BN254 scalar field for commitments and nullifiers,
// and SHA-256 for the ext-data public-input binding (spec §4.1).
package hashing

import (
	"crypto/sha256"
	"math/big"

	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/ccoin/shield/pkg/types"
)

// Poseidon hashes the given field elements with the BN254 Poseidon
// permutation, matching the circuit's in-circuit hash gadget. Every
// commitment and nullifier derivation in the engine goes through this
// function.
func Poseidon(inputs ...types.FieldElement) (types.FieldElement, error) {
	args := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		args[i] = in.BigInt()
	}
	result, err := iden3poseidon.Hash(args)
	if err != nil {
		return types.FieldElement{}, err
	}
	return types.FieldFromBigInt(result), nil
}

// MustPoseidon panics on error; used where the inputs are already known to
// be within the field and a fixed small arity the library always accepts.
func MustPoseidon(inputs ...types.FieldElement) types.FieldElement {
	out, err := Poseidon(inputs...)
	if err != nil {
		panic(err)
	}
	return out
}

// SHA256 hashes data and returns the 32-byte digest.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256AsField hashes data and interprets the digest as a BN254 field
// element, reducing modulo FieldSize as the circuit's public-input binding
// requires.
func SHA256AsField(data []byte) types.FieldElement {
	digest := SHA256(data)
	return types.FieldFromBigInt(new(big.Int).SetBytes(digest[:]))
}
