package types

import "math/big"

// NativeAssetTagLiteral is the canonical asset tag for the chain's native
// value leg of the pool. It is carried as a literal rather than derived,
// matching the on-chain program's hardcoded native mint address.
const NativeAssetTagLiteral = "11111111111111111111111111111112"

// AssetTagMode selects how the ext-data hash (§4.4) encodes the asset tag
// field: the legacy numeric-modulo-field path or the canonical raw-32-byte
// path. Deployments disagree on which the verifier expects; mismatching the
// mode yields an ext-data-hash mismatch at proof-verification time.
type AssetTagMode uint8

const (
	// AssetTagModeRaw treats the 32-byte mint identifier as an opaque value.
	AssetTagModeRaw AssetTagMode = iota
	// AssetTagModeNumeric reduces the mint identifier modulo FieldSize before
	// re-emitting it as little-endian 32 bytes.
	AssetTagModeNumeric
)

// AssetTag identifies which fungible the note belongs to, as a field
// element. Native value uses NativeAssetTagLiteral's field encoding; a
// fungible token's tag is its 32-byte mint identifier reduced modulo
// FieldSize.
type AssetTag FieldElement

// NativeAssetTag returns the asset tag for the chain's native value leg.
func NativeAssetTag() AssetTag {
	n, ok := new(big.Int).SetString(NativeAssetTagLiteral, 10)
	if !ok {
		panic("types: malformed native asset tag literal")
	}
	return AssetTag(FieldFromBigInt(n))
}

// AssetTagFromMint derives the asset tag for a fungible token by
// interpreting its 32-byte mint identifier as a big-endian integer and
// reducing it modulo FieldSize.
func AssetTagFromMint(mint [32]byte) AssetTag {
	return AssetTag(FieldFromBigInt(new(big.Int).SetBytes(mint[:])))
}

// BigInt returns the asset tag's field-element value.
func (a AssetTag) BigInt() *big.Int {
	return FieldElement(a).BigInt()
}

// Bytes returns the 32-byte big-endian encoding of the asset tag value.
func (a AssetTag) Bytes() []byte {
	return FieldElement(a).Bytes()
}

// IsNative reports whether this tag is the native asset tag.
func (a AssetTag) IsNative() bool {
	return a == NativeAssetTag()
}
