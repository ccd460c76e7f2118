package witness

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	bn254groth16 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/groth16"
)

// fieldSizeFp is the BN254 base-field modulus, the field proof
// coordinates (pi_a/pi_b/pi_c) live in. It is distinct from the scalar
// field (types.FieldSize) that commitments, nullifiers and public inputs
// are reduced modulo.
var fieldSizeFp, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088696311157297823662689037894645226208583", 10)

// EncodedProof is the relayer's on-chain wire layout for a Groth16 proof
// (spec §6): pi_a and pi_c as flattened (X, Y) pairs, pi_b as its
// outer pair-of-pairs with each inner pair reversed to match the
// verifier's G2 coordinate order.
type EncodedProof struct {
	PiA [64]byte  // (Ar.X, Ar.Y)
	PiB [128]byte // ((Bs.X.A1, Bs.X.A0), (Bs.Y.A1, Bs.Y.A0))
	PiC [64]byte  // (Krs.X, Krs.Y)
}

// EncodeProof serializes proof into the wire layout. proof must be a
// BN254 Groth16 proof (the only curve this engine uses).
func EncodeProof(proof groth16.Proof) (EncodedProof, error) {
	p, ok := proof.(*bn254groth16.Proof)
	if !ok {
		return EncodedProof{}, fmt.Errorf("witness: unexpected proof type %T", proof)
	}

	var out EncodedProof
	copyFp(out.PiA[0:32], &p.Ar.X)
	copyFp(out.PiA[32:64], &p.Ar.Y)

	copyFp(out.PiB[0:32], &p.Bs.X.A1)
	copyFp(out.PiB[32:64], &p.Bs.X.A0)
	copyFp(out.PiB[64:96], &p.Bs.Y.A1)
	copyFp(out.PiB[96:128], &p.Bs.Y.A0)

	copyFp(out.PiC[0:32], &p.Krs.X)
	copyFp(out.PiC[32:64], &p.Krs.Y)

	return out, nil
}

func copyFp(dst []byte, e *fp.Element) {
	b := e.Bytes()
	copy(dst, b[:])
}

// CompressedG1 is the compressed wire form of a G1 point: its X
// coordinate plus a sign bit for Y packed into bit 7 of byte 0 (spec §6).
// Y is "positive" (sign bit clear) iff y <= fieldSizeFp - y.
type CompressedG1 [32]byte

// CompressG1 encodes (x, y) into its compressed form.
func CompressG1(x, y *big.Int) CompressedG1 {
	var out CompressedG1
	xb := x.Bytes()
	copy(out[32-len(xb):], xb)

	negY := new(big.Int).Sub(fieldSizeFp, y)
	if y.Cmp(negY) > 0 {
		out[0] |= 0x80
	}
	return out
}

// CompressedProof packs pi_a and pi_c as compressed G1 points; pi_b, a G2
// point, has no compressed form in this wire format and is carried
// uncompressed.
type CompressedProof struct {
	PiA CompressedG1
	PiB [128]byte
	PiC CompressedG1
}

// EncodeCompressedProof is EncodeProof's size-reduced variant.
func EncodeCompressedProof(proof groth16.Proof) (CompressedProof, error) {
	p, ok := proof.(*bn254groth16.Proof)
	if !ok {
		return CompressedProof{}, fmt.Errorf("witness: unexpected proof type %T", proof)
	}

	var out CompressedProof
	out.PiA = CompressG1(p.Ar.X.BigInt(new(big.Int)), p.Ar.Y.BigInt(new(big.Int)))
	out.PiC = CompressG1(p.Krs.X.BigInt(new(big.Int)), p.Krs.Y.BigInt(new(big.Int)))

	copyFp(out.PiB[0:32], &p.Bs.X.A1)
	copyFp(out.PiB[32:64], &p.Bs.X.A0)
	copyFp(out.PiB[64:96], &p.Bs.Y.A1)
	copyFp(out.PiB[96:128], &p.Bs.Y.A0)

	return out, nil
}
