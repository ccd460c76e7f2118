// Package keypair derives the UTXO signing keypair a note's owner uses to
// bind a nullifier to knowledge of a private key inside the circuit
// (spec §4.2).
package keypair

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/ccoin/shield/internal/hashing"
	"github.com/ccoin/shield/pkg/types"
)

// ErrRandomSource is returned when the system random source fails.
var ErrRandomSource = errors.New("keypair: random source failed")

// PrivateKeyLen is the size in bytes of a note's private key.
const PrivateKeyLen = 31

// Keypair is a note signing keypair. PublicKey is what goes into a note's
// OwnerPubKey field; PrivateKey never leaves the holder's process.
type Keypair struct {
	PrivateKey [PrivateKeyLen]byte
	PublicKey  types.FieldElement
}

// Generate samples a fresh random private key. Used for dummy note inputs
// in a single, unbatched transaction: spec §4.7 requires each dummy's
// nullifier to be globally unique, which a fresh random key guarantees
// with overwhelming probability.
func Generate() (*Keypair, error) {
	var sk [PrivateKeyLen]byte
	if _, err := rand.Read(sk[:]); err != nil {
		return nil, ErrRandomSource
	}
	return fromPrivateKey(sk)
}

// DeriveDeterministic derives a keypair from a 31-byte encryption key: the
// private key is the first 31 bytes of SHA-256(encryption_key); the
// digest's last byte is not used. This is the
// holder's single persistent UTXO keypair, recovered the same way every
// session from the wallet-signature-derived encryption key.
func DeriveDeterministic(encryptionKey [31]byte) (*Keypair, error) {
	digest := sha256.Sum256(encryptionKey[:])
	var sk [PrivateKeyLen]byte
	copy(sk[:], digest[:PrivateKeyLen])
	return fromPrivateKey(sk)
}

// DeriveBatchDummy derives a deterministic keypair for a dummy input in a
// batch of transactions signed together. Seeding on (clock, batchSlot,
// sibling) guarantees distinct dummy nullifiers across the batch without
// needing a fresh random draw per sibling (spec §4.7, §4.9 design notes).
func DeriveBatchDummy(clock int64, batchSlot int, sibling uint8) (*Keypair, error) {
	seed := make([]byte, 0, 8+8+1+len("ccoin-shield-batch-dummy"))
	seed = append(seed, []byte("ccoin-shield-batch-dummy")...)
	seed = appendInt64(seed, clock)
	seed = appendInt64(seed, int64(batchSlot))
	seed = append(seed, sibling)

	digest := sha256.Sum256(seed)
	var sk [PrivateKeyLen]byte
	copy(sk[:], digest[:PrivateKeyLen])
	return fromPrivateKey(sk)
}

func fromPrivateKey(sk [PrivateKeyLen]byte) (*Keypair, error) {
	skField := types.FieldFromBigInt(bytesToBigInt(sk[:]))
	pub, err := hashing.Poseidon(skField)
	if err != nil {
		return nil, err
	}
	return &Keypair{PrivateKey: sk, PublicKey: pub}, nil
}

// Sign computes the pseudo-signature Poseidon(private_key, commitment,
// index) that binds a nullifier to knowledge of the private key. This is
// not a signature scheme in the conventional sense — it only needs to be
// infeasible to forge without the private key inside the circuit.
func (k *Keypair) Sign(commitment types.FieldElement, index uint32) (types.FieldElement, error) {
	skField := types.FieldFromBigInt(bytesToBigInt(k.PrivateKey[:]))
	idxField := types.FieldFromBigInt(intToBigInt(int64(index)))
	return hashing.Poseidon(skField, commitment, idxField)
}

// PrivateKeyField returns the private key as a reduced field element, as
// consumed by the witness builder's inPrivateKey signal.
func (k *Keypair) PrivateKeyField() types.FieldElement {
	return types.FieldFromBigInt(bytesToBigInt(k.PrivateKey[:]))
}
