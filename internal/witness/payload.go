package witness

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/ccoin/shield/pkg/types"
)

// NativeDiscriminator and FungibleDiscriminator are the on-chain program's
// 8-byte instruction discriminators for the native and fungible-token
// transfer instructions (spec §6).
var (
	NativeDiscriminator   = [8]byte{217, 149, 130, 143, 221, 52, 252, 119}
	FungibleDiscriminator = [8]byte{154, 66, 244, 204, 78, 225, 163, 151}
)

// PublicSignals is the ordered set of public field-element signals that
// follow the proof components in the on-wire payload.
type PublicSignals struct {
	Root             types.FieldElement
	PublicAmount     types.FieldElement
	ExtDataHash      types.FieldElement
	InputNullifier   [2]types.FieldElement
	OutputCommitment [2]types.FieldElement
}

// ProofBlob assembles the discriminator, flattened proof, seven 32-byte
// public signals, and the little-endian extAmount/fee integers — the
// relayer's `serializedProof` withdraw-param (spec §6 items 1-5). The
// output ciphertexts travel separately as the withdraw-params'
// encryptedOutput1/2 fields, so they are not part of this blob; use
// InstructionPayload when a single blob carrying everything (ciphertexts
// included) is needed, such as the raw instruction data a deposit's
// signing callback embeds in its transaction.
func ProofBlob(proof EncodedProof, signals PublicSignals, extAmount int64, fee uint64, spl bool) []byte {
	disc := NativeDiscriminator
	if spl {
		disc = FungibleDiscriminator
	}

	buf := make([]byte, 0, 8+64+128+64+32*7+8+8)
	buf = append(buf, disc[:]...)
	buf = append(buf, proof.PiA[:]...)
	buf = append(buf, proof.PiB[:]...)
	buf = append(buf, proof.PiC[:]...)
	buf = append(buf, signals.Root.Bytes()...)
	buf = append(buf, signals.PublicAmount.Bytes()...)
	buf = append(buf, signals.ExtDataHash.Bytes()...)
	buf = append(buf, signals.InputNullifier[0].Bytes()...)
	buf = append(buf, signals.InputNullifier[1].Bytes()...)
	buf = append(buf, signals.OutputCommitment[0].Bytes()...)
	buf = append(buf, signals.OutputCommitment[1].Bytes()...)

	var extAmountBuf [8]byte
	binary.LittleEndian.PutUint64(extAmountBuf[:], uint64(extAmount))
	buf = append(buf, extAmountBuf[:]...)

	var feeBuf [8]byte
	binary.LittleEndian.PutUint64(feeBuf[:], fee)
	buf = append(buf, feeBuf[:]...)

	return buf
}

// ProofBlobBase64 is ProofBlob, base64-encoded for direct use as the
// withdraw-params' serializedProof field.
func ProofBlobBase64(proof EncodedProof, signals PublicSignals, extAmount int64, fee uint64, spl bool) string {
	return base64.StdEncoding.EncodeToString(ProofBlob(proof, signals, extAmount, fee, spl))
}

// InstructionPayload appends the two length-prefixed ciphertexts (spec §6
// item 6) to ProofBlob, producing the complete on-wire payload a deposit's
// unsigned instruction data carries.
func InstructionPayload(proof EncodedProof, signals PublicSignals, extAmount int64, fee uint64, ciphertext1, ciphertext2 []byte, spl bool) []byte {
	buf := ProofBlob(proof, signals, extAmount, fee, spl)
	buf = appendPayloadLenPrefixed(buf, ciphertext1)
	buf = appendPayloadLenPrefixed(buf, ciphertext2)
	return buf
}

// InstructionPayloadBase64 is InstructionPayload, base64-encoded for
// direct use as a relayer request field.
func InstructionPayloadBase64(proof EncodedProof, signals PublicSignals, extAmount int64, fee uint64, ciphertext1, ciphertext2 []byte, spl bool) string {
	return base64.StdEncoding.EncodeToString(InstructionPayload(proof, signals, extAmount, fee, ciphertext1, ciphertext2, spl))
}

func appendPayloadLenPrefixed(buf, data []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, data...)
}
