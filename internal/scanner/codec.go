package scanner

import "encoding/hex"

// decodeCiphertext decodes a ciphertext as delivered over the wire. The
// relayer's /utxos/range and /merkle/proof responses hex-encode every
// binary field consistently with the rest of the API (spec §6), so
// ciphertexts are assumed hex-encoded as well.
func decodeCiphertext(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
