// Package extdata computes the canonical SHA-256 binding of a
// transaction's public ext-data payload (spec §4.4).
package extdata

import (
	"encoding/binary"

	"github.com/ccoin/shield/internal/hashing"
	"github.com/ccoin/shield/pkg/types"
)

// twosComplementUint64 maps a signed ext-amount to its unsigned 64-bit
// two's-complement representation: negative x becomes 2^64 + x.
func twosComplementUint64(extAmount int64) uint64 {
	return uint64(extAmount)
}

// Serialize lays out the ext-data tuple in the canonical byte order of
// spec §4.4, ready to be SHA-256'd.
func Serialize(ed types.ExtData, mode types.AssetTagMode) []byte {
	buf := make([]byte, 0, 32+8+4+len(ed.Ciphertext1)+4+len(ed.Ciphertext2)+8+32+32)

	buf = append(buf, ed.Recipient[:]...)

	var amountBuf [8]byte
	binary.LittleEndian.PutUint64(amountBuf[:], twosComplementUint64(ed.ExtAmount))
	buf = append(buf, amountBuf[:]...)

	buf = appendLenPrefixed(buf, ed.Ciphertext1)
	buf = appendLenPrefixed(buf, ed.Ciphertext2)

	var feeBuf [8]byte
	binary.LittleEndian.PutUint64(feeBuf[:], ed.Fee)
	buf = append(buf, feeBuf[:]...)

	buf = append(buf, ed.FeeRecipient[:]...)

	buf = append(buf, assetTagBytes(ed.AssetTag, mode)...)

	return buf
}

func appendLenPrefixed(buf []byte, data []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, data...)
	return buf
}

// assetTagBytes encodes the asset tag per the configured mode. Raw mode
// emits the tag's big-endian field bytes unchanged (used for native and
// the canonical fungible-token path); numeric mode re-reduces the tag
// modulo FieldSize and emits it little-endian, matching legacy verifiers.
func assetTagBytes(tag types.AssetTag, mode types.AssetTagMode) []byte {
	switch mode {
	case types.AssetTagModeNumeric:
		reduced := types.FieldFromBigInt(tag.BigInt())
		be := reduced.Bytes()
		le := make([]byte, 32)
		for i, b := range be {
			le[31-i] = b
		}
		return le
	default:
		return tag.Bytes()
	}
}

// Hash returns the 32-byte SHA-256 digest of the canonical ext-data
// serialization.
func Hash(ed types.ExtData, mode types.AssetTagMode) [32]byte {
	return hashing.SHA256(Serialize(ed, mode))
}

// HashAsField returns the ext-data hash reduced to a BN254 field element,
// as the witness builder's extDataHash public input requires.
func HashAsField(ed types.ExtData, mode types.AssetTagMode) types.FieldElement {
	return hashing.SHA256AsField(Serialize(ed, mode))
}
