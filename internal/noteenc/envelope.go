// Package noteenc implements the authenticated note-encryption envelope of
// spec §4.3: AES-128-CTR for confidentiality, HMAC-SHA-256 truncated to 16
// bytes for authentication, over a pipe-delimited plaintext.
package noteenc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ccoin/shield/pkg/types"
)

const (
	// encKeyLen is the AES-128 key length, the first 16 bytes of the
	// 31-byte note-encryption key.
	encKeyLen = 16
	// ivLen is the AES-CTR IV length.
	ivLen = 16
	// authTagLen is the truncated HMAC-SHA-256 tag length.
	authTagLen = 16
	// envelopeOverhead is IV + auth tag.
	envelopeOverhead = ivLen + authTagLen
)

// ErrAuthFailed indicates the envelope's auth tag did not verify. Spec §4.3
// and §7 require this to be treated as "not for me": a non-fatal signal
// the scanner uses to skip ciphertexts belonging to other holders, never
// surfaced to the caller as an error.
var ErrAuthFailed = errors.New("noteenc: authentication failed")

// ErrMalformedPlaintext is returned when a successfully-decrypted envelope
// does not parse as the four pipe-delimited note fields.
var ErrMalformedPlaintext = errors.New("noteenc: malformed note plaintext")

// Plaintext holds the four fields encoded in a note's encrypted payload.
type Plaintext struct {
	Amount   uint64
	Blinding types.FieldElement
	Index    uint32
	AssetTag types.AssetTag
}

// deriveKeys splits the 31-byte note-encryption key into an AES-128 key
// (first 16 bytes) and an HMAC-SHA-256 key (remaining 15 bytes), per §4.3.
func deriveKeys(key [31]byte) (encKey, macKey []byte) {
	return key[:encKeyLen], key[encKeyLen:]
}

// Encrypt builds the authenticated envelope IV(16) || auth_tag(16) ||
// ciphertext for the given plaintext fields.
func Encrypt(key [31]byte, p Plaintext) ([]byte, error) {
	encKey, macKey := deriveKeys(key)

	plaintext := []byte(fmt.Sprintf("%d|%s|%d|%s",
		p.Amount,
		p.Blinding.BigInt().String(),
		p.Index,
		p.AssetTag.BigInt().String(),
	))

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("noteenc: generate iv: %w", err)
	}

	ciphertext, err := aesCTR(encKey, iv, plaintext)
	if err != nil {
		return nil, fmt.Errorf("noteenc: encrypt: %w", err)
	}

	tag := authTag(macKey, iv, ciphertext)

	out := make([]byte, 0, ivLen+authTagLen+len(ciphertext))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt verifies and opens an envelope. Any failure — bad tag, wrong
// length, malformed plaintext — is reported as an error; callers scanning
// for their own notes must treat ALL such errors identically ("not for
// me") and continue to the next candidate rather than aborting a scan.
func Decrypt(key [31]byte, envelope []byte) (Plaintext, error) {
	if len(envelope) < envelopeOverhead {
		return Plaintext{}, ErrAuthFailed
	}

	encKey, macKey := deriveKeys(key)

	iv := envelope[:ivLen]
	tag := envelope[ivLen : ivLen+authTagLen]
	ciphertext := envelope[envelopeOverhead:]

	expected := authTag(macKey, iv, ciphertext)
	if subtle.ConstantTimeCompare(tag, expected) != 1 {
		return Plaintext{}, ErrAuthFailed
	}

	plaintext, err := aesCTR(encKey, iv, ciphertext)
	if err != nil {
		return Plaintext{}, ErrAuthFailed
	}

	return parsePlaintext(plaintext)
}

func parsePlaintext(plaintext []byte) (Plaintext, error) {
	fields := strings.Split(string(plaintext), "|")
	if len(fields) != 4 {
		return Plaintext{}, ErrMalformedPlaintext
	}

	amount, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Plaintext{}, ErrMalformedPlaintext
	}

	blinding, ok := new(big.Int).SetString(fields[1], 10)
	if !ok {
		return Plaintext{}, ErrMalformedPlaintext
	}

	index, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Plaintext{}, ErrMalformedPlaintext
	}

	assetTag, ok := new(big.Int).SetString(fields[3], 10)
	if !ok {
		return Plaintext{}, ErrMalformedPlaintext
	}

	return Plaintext{
		Amount:   amount,
		Blinding: types.FieldFromBigInt(blinding),
		Index:    uint32(index),
		AssetTag: types.AssetTag(types.FieldFromBigInt(assetTag)),
	}, nil
}

// aesCTR encrypts or decrypts data using AES-128-CTR. CTR mode is
// symmetric, so the same function serves both directions.
func aesCTR(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(block, iv)
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out, nil
}

// authTag computes HMAC-SHA-256(macKey, IV || ciphertext) truncated to the
// first 16 bytes.
func authTag(macKey, iv, ciphertext []byte) []byte {
	h := hmac.New(sha256.New, macKey)
	h.Write(iv)
	h.Write(ciphertext)
	return h.Sum(nil)[:authTagLen]
}
